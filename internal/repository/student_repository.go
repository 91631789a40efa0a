package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// StudentRepository handles student profile rows in the remote store.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListAll retrieves all student profiles ordered by join time descending.
func (r *StudentRepository) ListAll(ctx context.Context) ([]model.StudentProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, grade, joined_at FROM students ORDER BY joined_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var students []model.StudentProfile
	for rows.Next() {
		var s model.StudentProfile
		if err := rows.Scan(&s.ID, &s.Name, &s.Grade, &s.JoinedAt); err != nil {
			return nil, classify(err)
		}
		students = append(students, s)
	}
	return students, classify(rows.Err())
}

// Upsert stores a student profile keyed by id. Conflicts on the id
// overwrite, so re-sending a known profile is idempotent.
func (r *StudentRepository) Upsert(ctx context.Context, s *model.StudentProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (id, name, grade, joined_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, grade = EXCLUDED.grade`,
		s.ID, s.Name, s.Grade, s.JoinedAt)
	return classify(err)
}
