package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassess/eduassess-backend/internal/exam"
	"github.com/eduassess/eduassess-backend/internal/model"
)

func TestRenderSubmissionProducesPDF(t *testing.T) {
	s := NewExportService(zerolog.Nop())

	q1 := uuid.New()
	q2 := uuid.New()
	paper := &model.QuestionPaper{
		ID:    uuid.New(),
		Title: "Chemistry Final",
		Grade: "12",
		Questions: []model.Question{
			{ID: q1, Text: "Balance the equation", Kind: model.QuestionKindSubjective, Points: 10},
			{ID: q2, Text: "Record your readings", Kind: model.QuestionKindSubjective, Points: 10},
		},
	}
	sub := &model.Submission{
		ID:           uuid.New(),
		PaperID:      paper.ID,
		PaperTitle:   paper.Title,
		StudentID:    uuid.New(),
		StudentName:  "Maya",
		StudentGrade: "12",
		SubmittedAt:  time.Now().UTC(),
		Answers: map[string]model.AnswerSubmission{
			q1.String(): {QuestionID: q1, AnswerText: "2H2 + O2 -> 2H2O"},
			q2.String(): {
				QuestionID: q2,
				AnswerText: "readings below" + exam.TableMarker(2, 2),
				Table:      [][]string{{"t", "v"}, {"1", "3.5"}},
			},
		},
	}

	pdf, err := s.RenderSubmission(sub, paper)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderSubmissionWithoutPaper(t *testing.T) {
	s := NewExportService(zerolog.Nop())

	q := uuid.New()
	sub := &model.Submission{
		ID:          uuid.New(),
		PaperID:     uuid.New(),
		PaperTitle:  "Deleted Paper",
		StudentName: "Maya",
		SubmittedAt: time.Now().UTC(),
		Answers: map[string]model.AnswerSubmission{
			q.String(): {QuestionID: q, AnswerText: "still exportable"},
		},
	}

	pdf, err := s.RenderSubmission(sub, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
