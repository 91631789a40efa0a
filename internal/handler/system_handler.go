package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/store"
)

// SystemHandler exposes health and connectivity status.
type SystemHandler struct {
	coordinator    *store.SyncCoordinator
	extractService *service.ExtractService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(coordinator *store.SyncCoordinator, extractService *service.ExtractService) *SystemHandler {
	return &SystemHandler{coordinator: coordinator, extractService: extractService}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status godoc
// GET /api/v1/status
// Reports whether the server runs against the remote database or the local
// cache, and whether document extraction is available.
func (h *SystemHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"offline":           h.coordinator.Offline(),
		"extract_available": h.extractService.Enabled(),
	})
}
