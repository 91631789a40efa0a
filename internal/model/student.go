package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentProfile represents a student, created on first login. Identity is
// resolved by exact (name, grade) match; there is no password.
type StudentProfile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Grade    string    `json:"grade"`
	JoinedAt time.Time `json:"joined_at"`
}

// StudentLoginRequest is the payload for student identity resolution.
type StudentLoginRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Grade string `json:"grade" binding:"required,oneof=8 9 10 11 12"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string         `json:"token"`
	Student StudentProfile `json:"student"`
}
