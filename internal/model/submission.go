package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerSubmission is a per-question answer record. AnswerText is the empty
// string, never absent, once a question has been touched. Table holds an
// optional grid payload of text cells; its presence is mirrored by a
// [TABLE:RxC] marker inside AnswerText so exported views can detect it.
type AnswerSubmission struct {
	QuestionID uuid.UUID  `json:"question_id"`
	AnswerText string     `json:"answer_text"`
	ImageURI   string     `json:"image_uri,omitempty"`
	Table      [][]string `json:"table,omitempty"`
}

// Submission is the durable, immutable record of a completed attempt.
// Paper and student display fields are denormalized snapshots.
type Submission struct {
	ID           uuid.UUID `json:"id"`
	PaperID      uuid.UUID `json:"paper_id"`
	PaperTitle   string    `json:"paper_title"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentGrade string    `json:"student_grade"`
	SubmittedAt  time.Time `json:"submitted_at"`
	// Answers is keyed by question id. Keys are a subset of the referenced
	// paper's question ids; iteration order for stats and export follows the
	// paper's question order.
	Answers map[string]AnswerSubmission `json:"answers"`
}
