package model

import "time"

// Instructor represents an instructor credential record, upserted by
// username on reset or creation.
type Instructor struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	LastLogin    time.Time `json:"last_login"`
}

// InstructorLoginRequest is the payload for instructor authentication.
type InstructorLoginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// InstructorResetRequest creates or overwrites an instructor credential.
type InstructorResetRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// InstructorLoginResponse is returned after successful instructor login.
type InstructorLoginResponse struct {
	Token      string     `json:"token"`
	Instructor Instructor `json:"instructor"`
}
