package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// PaperRepository handles question paper rows in the remote store.
// Questions are stored as a JSONB column; reference documents as data-URI
// text, subject to maxPayloadBytes.
type PaperRepository struct {
	pool            *pgxpool.Pool
	maxPayloadBytes int64
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool, maxPayloadBytes int64) *PaperRepository {
	return &PaperRepository{pool: pool, maxPayloadBytes: maxPayloadBytes}
}

// ListAll retrieves all papers ordered by creation time descending.
func (r *PaperRepository) ListAll(ctx context.Context) ([]model.QuestionPaper, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, subject, grade, duration, questions, created_at,
		        reference_doc, valid_from, valid_until
		 FROM papers ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var papers []model.QuestionPaper
	for rows.Next() {
		var p model.QuestionPaper
		var questions []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Subject, &p.Grade, &p.Duration,
			&questions, &p.CreatedAt, &p.ReferenceDoc, &p.ValidFrom, &p.ValidUntil); err != nil {
			return nil, classify(err)
		}
		if err := json.Unmarshal(questions, &p.Questions); err != nil {
			return nil, fmt.Errorf("decode questions for paper %s: %w", p.ID, err)
		}
		papers = append(papers, p)
	}
	return papers, classify(rows.Err())
}

// Insert stores a new paper. Returns a too-large error without touching the
// store when the reference document alone exceeds the remote payload cap.
func (r *PaperRepository) Insert(ctx context.Context, p *model.QuestionPaper) error {
	if r.maxPayloadBytes > 0 && int64(len(p.ReferenceDoc)) > r.maxPayloadBytes {
		return ErrPayloadTooLarge
	}

	questions, err := json.Marshal(p.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO papers (id, title, subject, grade, duration, questions,
		                     created_at, reference_doc, valid_from, valid_until)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Title, p.Subject, p.Grade, p.Duration, questions,
		p.CreatedAt, p.ReferenceDoc, p.ValidFrom, p.ValidUntil)
	return classify(err)
}

// Delete removes a paper by id.
func (r *PaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM papers WHERE id = $1`, id)
	return classify(err)
}
