package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// InstructorRepository handles instructor credential rows in the remote store.
type InstructorRepository struct {
	pool *pgxpool.Pool
}

// NewInstructorRepository creates a new InstructorRepository.
func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

// GetByUsername retrieves an instructor credential record. Returns a
// not-found kind when the username is unknown.
func (r *InstructorRepository) GetByUsername(ctx context.Context, username string) (*model.Instructor, error) {
	ins := &model.Instructor{}
	err := r.pool.QueryRow(ctx,
		`SELECT username, password_hash, last_login FROM instructors WHERE username = $1`,
		username,
	).Scan(&ins.Username, &ins.PasswordHash, &ins.LastLogin)
	if err != nil {
		return nil, classify(err)
	}
	return ins, nil
}

// Upsert creates or overwrites an instructor credential keyed by username.
func (r *InstructorRepository) Upsert(ctx context.Context, ins *model.Instructor) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO instructors (username, password_hash, last_login)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash, last_login = EXCLUDED.last_login`,
		ins.Username, ins.PasswordHash, ins.LastLogin)
	return classify(err)
}

// TouchLastLogin records a successful login time.
func (r *InstructorRepository) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE instructors SET last_login = $1 WHERE username = $2`, at, username)
	return classify(err)
}
