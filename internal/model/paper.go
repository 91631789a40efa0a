package model

import (
	"time"

	"github.com/google/uuid"
)

// SupportedGrades lists the grade levels papers and students may use.
var SupportedGrades = []string{"8", "9", "10", "11", "12"}

// QuestionPaper represents an exam definition. Immutable once created
// except for deletion.
type QuestionPaper struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	Grade     string     `json:"grade"`
	Duration  int        `json:"duration"` // minutes
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	// ReferenceDoc is the optional source PDF/image attached for student
	// viewing, stored as a data URI (data:<mime>;base64,<payload>).
	ReferenceDoc string     `json:"reference_doc,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// AvailableAt reports whether the paper's validity window (if any) covers t.
func (p *QuestionPaper) AvailableAt(t time.Time) bool {
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && t.After(*p.ValidUntil) {
		return false
	}
	return true
}

// QuestionByID returns the paper's question with the given id, or nil.
func (p *QuestionPaper) QuestionByID(id uuid.UUID) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

// CreatePaperRequest is the payload for creating a new paper.
type CreatePaperRequest struct {
	Title        string                  `json:"title" binding:"required,min=1,max=255"`
	Subject      string                  `json:"subject" binding:"required,min=1,max=100"`
	Grade        string                  `json:"grade" binding:"required,oneof=8 9 10 11 12"`
	Duration     int                     `json:"duration" binding:"required,min=1,max=480"`
	Questions    []CreateQuestionRequest `json:"questions" binding:"dive"`
	ReferenceDoc string                  `json:"reference_doc" binding:"omitempty"`
	ValidFrom    *time.Time              `json:"valid_from" binding:"omitempty"`
	ValidUntil   *time.Time              `json:"valid_until" binding:"omitempty,gtfield=ValidFrom"`
}

// CreateQuestionRequest is the payload for one question inside a paper.
type CreateQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Kind          string   `json:"kind" binding:"required,oneof=subjective mcq"`
	Points        int      `json:"points" binding:"min=0"`
	Options       []string `json:"options" binding:"omitempty,dive,max=500"`
	Image         string   `json:"image" binding:"omitempty"`
	RequiresImage bool     `json:"requires_image"`
}
