package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// SubmissionRepository handles submission rows in the remote store.
// The answer mapping is stored as a JSONB column.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// ListAll retrieves all submissions ordered by submission time descending.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, paper_id, paper_title, student_id, student_name,
		        student_grade, submitted_at, answers
		 FROM submissions ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		var answers []byte
		if err := rows.Scan(&s.ID, &s.PaperID, &s.PaperTitle, &s.StudentID,
			&s.StudentName, &s.StudentGrade, &s.SubmittedAt, &answers); err != nil {
			return nil, classify(err)
		}
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for submission %s: %w", s.ID, err)
		}
		subs = append(subs, s)
	}
	return subs, classify(rows.Err())
}

// Insert stores a finalized submission.
func (r *SubmissionRepository) Insert(ctx context.Context, s *model.Submission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO submissions (id, paper_id, paper_title, student_id,
		                          student_name, student_grade, submitted_at, answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.PaperID, s.PaperTitle, s.StudentID,
		s.StudentName, s.StudentGrade, s.SubmittedAt, answers)
	return classify(err)
}

// DeleteByPaper removes all submissions referencing the given paper.
func (r *SubmissionRepository) DeleteByPaper(ctx context.Context, paperID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE paper_id = $1`, paperID)
	return classify(err)
}
