package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/store"
	"github.com/eduassess/eduassess-backend/internal/validator"
)

// PaperHandler handles instructor-facing paper management.
type PaperHandler struct {
	coordinator    *store.SyncCoordinator
	extractService *service.ExtractService
	cfg            *config.Config
	log            zerolog.Logger
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(
	coordinator *store.SyncCoordinator,
	extractService *service.ExtractService,
	cfg *config.Config,
	log zerolog.Logger,
) *PaperHandler {
	return &PaperHandler{
		coordinator:    coordinator,
		extractService: extractService,
		cfg:            cfg,
		log:            log.With().Str("component", "paper_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/instructor/papers
// Returns all papers, newest first, with the current connectivity status.
func (h *PaperHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"papers":  h.coordinator.Papers(),
		"offline": h.coordinator.Offline(),
	})
}

// Create godoc
// POST /api/v1/instructor/papers
// Creates a paper. The reply carries the save outcome: "success",
// "saved_without_attachment" when the attachment had to be dropped to fit
// remote limits, or "failed".
func (h *PaperHandler) Create(c *gin.Context) {
	var req model.CreatePaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if int64(len(req.ReferenceDoc)) > h.cfg.MaxReferenceDocBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrCodeFileTooLarge)
		return
	}

	paper := model.QuestionPaper{
		ID:           uuid.New(),
		Title:        req.Title,
		Subject:      req.Subject,
		Grade:        req.Grade,
		Duration:     req.Duration,
		CreatedAt:    time.Now().UTC(),
		ReferenceDoc: req.ReferenceDoc,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
	}
	for _, q := range req.Questions {
		paper.Questions = append(paper.Questions, model.Question{
			ID:            uuid.New(),
			Text:          q.Text,
			Kind:          model.QuestionKind(q.Kind),
			Points:        q.Points,
			Options:       q.Options,
			Image:         q.Image,
			RequiresImage: q.RequiresImage,
		})
	}

	outcome := h.coordinator.CreatePaper(c.Request.Context(), paper)
	if outcome == store.OutcomeFailed {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"paper":   paper,
		"outcome": outcome,
		"offline": h.coordinator.Offline(),
	})
}

// Delete godoc
// DELETE /api/v1/instructor/papers/:id
// Removes a paper and its submissions. Removal is optimistic and always
// succeeds locally.
func (h *PaperHandler) Delete(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrCodePaperNotFound)
		return
	}

	h.coordinator.DeletePaper(c.Request.Context(), paperID)
	response.Success(c, http.StatusOK, gin.H{})
}

// Extract godoc
// POST /api/v1/instructor/papers/extract
// Accepts a multipart document upload and returns an AI-drafted paper form.
func (h *PaperHandler) Extract(c *gin.Context) {
	if !h.extractService.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrCodeExtractDisabled)
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation,
			map[string]string{"document": "document file is required"})
		return
	}
	if fileHeader.Size > h.cfg.MaxReferenceDocBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrCodeFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	draft, err := h.extractService.Extract(c.Request.Context(), mimeType, data)
	if err != nil {
		if errors.Is(err, service.ErrExtractDisabled) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrCodeExtractDisabled)
			return
		}
		h.log.Warn().Err(err).Msg("Document extraction failed")
		response.Fail(c, http.StatusBadGateway, response.ErrCodeExtractFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draft": draft})
}
