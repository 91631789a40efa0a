package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/store"
)

// SubmissionHandler handles instructor-facing submission review and export.
type SubmissionHandler struct {
	coordinator   *store.SyncCoordinator
	exportService *service.ExportService
	log           zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(
	coordinator *store.SyncCoordinator,
	exportService *service.ExportService,
	log zerolog.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		coordinator:   coordinator,
		exportService: exportService,
		log:           log.With().Str("component", "submission_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/instructor/submissions
// Returns all submissions, newest first. Optional ?paper_id= filters to one paper.
func (h *SubmissionHandler) List(c *gin.Context) {
	submissions := h.coordinator.Submissions()

	if raw := c.Query("paper_id"); raw != "" {
		paperID, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrCodePaperNotFound)
			return
		}
		filtered := submissions[:0]
		for _, s := range submissions {
			if s.PaperID == paperID {
				filtered = append(filtered, s)
			}
		}
		submissions = filtered
	}

	response.Success(c, http.StatusOK, gin.H{
		"submissions": submissions,
		"offline":     h.coordinator.Offline(),
	})
}

// Get godoc
// GET /api/v1/instructor/submissions/:id
// Returns one submission together with its paper when it still exists.
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, ok := h.lookup(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"submission": sub,
		"paper":      h.coordinator.PaperByID(sub.PaperID),
	})
}

// Export godoc
// GET /api/v1/instructor/submissions/:id/export
// Streams a printable PDF of the submission.
func (h *SubmissionHandler) Export(c *gin.Context) {
	sub, ok := h.lookup(c)
	if !ok {
		return
	}

	pdf, err := h.exportService.RenderSubmission(sub, h.coordinator.PaperByID(sub.PaperID))
	if err != nil {
		h.log.Error().Err(err).Str("submission_id", sub.ID.String()).Msg("Submission export failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	filename := fmt.Sprintf("submission-%s.pdf", sub.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *SubmissionHandler) lookup(c *gin.Context) (*model.Submission, bool) {
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrCodeSubmissionNotFound)
		return nil, false
	}

	sub := h.coordinator.SubmissionByID(subID)
	if sub == nil {
		response.Fail(c, http.StatusNotFound, response.ErrCodeSubmissionNotFound)
		return nil, false
	}
	return sub, true
}
