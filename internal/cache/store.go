package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/model"
)

// Store is the local cache: named string slots each holding one
// JSON-serialized record list, read with a default-empty-list fallback on
// absence or parse failure. Writes are last-writer-wins; durable writes
// land here whenever the remote store is out of reach.
type Store struct {
	rdb *redis.Client
	log zerolog.Logger
}

// New creates a local cache store backed by the given Redis client.
func New(rdb *redis.Client, log zerolog.Logger) *Store {
	return &Store{
		rdb: rdb,
		log: log.With().Str("component", "local_cache").Logger(),
	}
}

// ReadPapers loads the cached paper list, empty if absent or malformed.
func (s *Store) ReadPapers(ctx context.Context) []model.QuestionPaper {
	var papers []model.QuestionPaper
	s.readSlot(ctx, config.CacheKey.PapersSlot(), &papers)
	return papers
}

// WritePapers replaces the cached paper list.
func (s *Store) WritePapers(ctx context.Context, papers []model.QuestionPaper) {
	s.writeSlot(ctx, config.CacheKey.PapersSlot(), papers)
}

// ReadStudents loads the cached student roster, empty if absent or malformed.
func (s *Store) ReadStudents(ctx context.Context) []model.StudentProfile {
	var students []model.StudentProfile
	s.readSlot(ctx, config.CacheKey.StudentsSlot(), &students)
	return students
}

// WriteStudents replaces the cached student roster.
func (s *Store) WriteStudents(ctx context.Context, students []model.StudentProfile) {
	s.writeSlot(ctx, config.CacheKey.StudentsSlot(), students)
}

// ReadSubmissions loads the cached submission list, empty if absent or malformed.
func (s *Store) ReadSubmissions(ctx context.Context) []model.Submission {
	var subs []model.Submission
	s.readSlot(ctx, config.CacheKey.SubmissionsSlot(), &subs)
	return subs
}

// WriteSubmissions replaces the cached submission list.
func (s *Store) WriteSubmissions(ctx context.Context, subs []model.Submission) {
	s.writeSlot(ctx, config.CacheKey.SubmissionsSlot(), subs)
}

// ReadInstructors loads the cached instructor credentials for offline logins.
func (s *Store) ReadInstructors(ctx context.Context) []model.Instructor {
	var raw []instructorRecord
	s.readSlot(ctx, config.CacheKey.InstructorsSlot(), &raw)
	instructors := make([]model.Instructor, 0, len(raw))
	for _, r := range raw {
		instructors = append(instructors, model.Instructor{
			Username:     r.Username,
			PasswordHash: r.PasswordHash,
			LastLogin:    r.LastLogin,
		})
	}
	return instructors
}

// WriteInstructors replaces the cached instructor credentials.
func (s *Store) WriteInstructors(ctx context.Context, instructors []model.Instructor) {
	raw := make([]instructorRecord, 0, len(instructors))
	for _, ins := range instructors {
		raw = append(raw, instructorRecord{
			Username:     ins.Username,
			PasswordHash: ins.PasswordHash,
			LastLogin:    ins.LastLogin,
		})
	}
	s.writeSlot(ctx, config.CacheKey.InstructorsSlot(), raw)
}

// instructorRecord mirrors model.Instructor with the digest serialized.
// The model hides PasswordHash from API JSON; the cache must keep it.
type instructorRecord struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	LastLogin    time.Time `json:"last_login"`
}

// Enqueue appends a reconcile task to the retry queue.
func (s *Store) Enqueue(ctx context.Context, payload []byte) error {
	return s.rdb.RPush(ctx, config.CacheKey.ReconcileQueue(), payload).Err()
}

// Dequeue blocks up to timeout for the next reconcile task. Returns
// redis.Nil-wrapped errors on timeout.
func (s *Store) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := s.rdb.BLPop(ctx, timeout, config.CacheKey.ReconcileQueue()).Result()
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, redis.Nil
	}
	return []byte(result[1]), nil
}

// Requeue pushes a failed task back for a later retry.
func (s *Store) Requeue(ctx context.Context, payload []byte) error {
	return s.rdb.RPush(ctx, config.CacheKey.ReconcileQueue(), payload).Err()
}

func (s *Store) readSlot(ctx context.Context, slot string, dst interface{}) {
	raw, err := s.rdb.Get(ctx, slot).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("slot", slot).Msg("Cache read failed, using empty list")
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn().Err(err).Str("slot", slot).Msg("Cache slot malformed, using empty list")
	}
}

func (s *Store) writeSlot(ctx context.Context, slot string, src interface{}) {
	raw, err := json.Marshal(src)
	if err != nil {
		s.log.Error().Err(err).Str("slot", slot).Msg("Cache encode failed")
		return
	}
	if err := s.rdb.Set(ctx, slot, raw, 0).Err(); err != nil {
		s.log.Error().Err(err).Str("slot", slot).Msg("Cache write failed")
	}
}
