package model

import "github.com/google/uuid"

// QuestionKind distinguishes free-form from multiple-choice questions.
type QuestionKind string

const (
	QuestionKindSubjective     QuestionKind = "subjective"
	QuestionKindMultipleChoice QuestionKind = "mcq"
)

// Question represents a single exam question. Never mutated after the
// paper is published.
type Question struct {
	ID      uuid.UUID    `json:"id"`
	Text    string       `json:"text"`
	Kind    QuestionKind `json:"kind"`
	Points  int          `json:"points"`
	Options []string     `json:"options,omitempty"`
	// Image is an optional diagram, stored as a base64 data URI.
	Image         string `json:"image,omitempty"`
	RequiresImage bool   `json:"requires_image,omitempty"`
}
