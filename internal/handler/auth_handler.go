package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduassess/eduassess-backend/internal/middleware"
	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// InstructorLogin godoc
// POST /api/v1/auth/instructor/login
// Verifies instructor credentials and returns a JWT.
func (h *AuthHandler) InstructorLogin(c *gin.Context) {
	var req model.InstructorLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	result, err := h.authService.InstructorLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrCodeUserNotFound)
		case errors.Is(err, service.ErrInvalidPassword):
			response.Fail(c, http.StatusUnauthorized, response.ErrCodeInvalidPassword)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// InstructorReset godoc
// POST /api/v1/auth/instructor/reset
// Creates or overwrites an instructor credential.
func (h *AuthHandler) InstructorReset(c *gin.Context) {
	var req model.InstructorResetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if err := h.authService.InstructorReset(c.Request.Context(), req.Username, req.Password); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"username": req.Username})
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Resolves the student profile by (name, grade) and returns a JWT. A new
// profile is created on first login.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	result, err := h.authService.StudentLogin(c.Request.Context(), req.Name, req.Grade)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetStudentProfile godoc
// GET /api/v1/student/me
// Returns the identity embedded in the student token.
func (h *AuthHandler) GetStudentProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":    claims.Subject,
		"name":  claims.Name,
		"grade": claims.Grade,
	})
}
