package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/store"
)

// StudentHandler handles the instructor-facing student roster.
type StudentHandler struct {
	coordinator *store.SyncCoordinator
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(coordinator *store.SyncCoordinator) *StudentHandler {
	return &StudentHandler{coordinator: coordinator}
}

// List godoc
// GET /api/v1/instructor/students
// Returns every student profile seen by the system.
func (h *StudentHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"students": h.coordinator.Students(),
		"offline":  h.coordinator.Offline(),
	})
}
