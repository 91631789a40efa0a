package repository

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies remote store failures into the closed set the sync layer
// matches on. Callers above the repository boundary never inspect raw
// driver errors.
type Kind string

const (
	// KindUnavailable covers connectivity failures: the remote store is
	// unreachable or the call timed out.
	KindUnavailable Kind = "unavailable"
	// KindTooLarge marks an insert rejected for payload size.
	KindTooLarge Kind = "too_large"
	// KindNotFound marks a lookup with no matching row.
	KindNotFound Kind = "not_found"
	// KindOther covers everything else (constraint violations, bad SQL).
	KindOther Kind = "other"
)

// Error wraps a driver error with its classified kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ErrPayloadTooLarge is returned when a row exceeds the configured remote
// payload cap before the insert is even attempted.
var ErrPayloadTooLarge = &Error{Kind: KindTooLarge, Err: errors.New("payload exceeds remote size limit")}

// KindOf returns the classified kind for err, or KindOther if unknown.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindOther
}

// classify maps a raw pgx error to a repository *Error.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUnavailable, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "54000": // program_limit_exceeded
			return &Error{Kind: KindTooLarge, Err: err}
		case "57P01", "57P02", "57P03", "08000", "08003", "08006": // shutdown / connection failures
			return &Error{Kind: KindUnavailable, Err: err}
		}
		return &Error{Kind: KindOther, Err: err}
	}

	// pgconn wraps dial failures in its own connect error type.
	if pgconn.SafeToRetry(err) {
		return &Error{Kind: KindUnavailable, Err: err}
	}

	return &Error{Kind: KindUnavailable, Err: err}
}
