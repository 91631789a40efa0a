package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/exam"
	"github.com/eduassess/eduassess-backend/internal/middleware"
	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/response"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/store"
	"github.com/eduassess/eduassess-backend/internal/validator"
)

// ExamHandler handles the student exam-taking flow.
type ExamHandler struct {
	coordinator *store.SyncCoordinator
	sessions    *exam.SessionManager
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(coordinator *store.SyncCoordinator, sessions *exam.SessionManager, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		coordinator: coordinator,
		sessions:    sessions,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// ListPapers godoc
// GET /api/v1/student/papers
// Returns the papers available to the student's grade right now.
func (h *ExamHandler) ListPapers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return
	}
	now := time.Now()

	available := make([]model.QuestionPaper, 0)
	for _, p := range h.coordinator.Papers() {
		if p.Grade != claims.Grade || !p.AvailableAt(now) {
			continue
		}
		// Students see the paper list without its question bodies.
		p.Questions = nil
		p.ReferenceDoc = ""
		available = append(available, p)
	}

	response.Success(c, http.StatusOK, gin.H{
		"papers":  available,
		"offline": h.coordinator.Offline(),
	})
}

// GetPaper godoc
// GET /api/v1/student/papers/:id
// Returns one paper in full, including the reference document.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return
	}

	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrCodePaperNotFound)
		return
	}

	paper := h.coordinator.PaperByID(paperID)
	if paper == nil || paper.Grade != claims.Grade {
		response.Fail(c, http.StatusNotFound, response.ErrCodePaperNotFound)
		return
	}
	if !paper.AvailableAt(time.Now()) {
		response.Fail(c, http.StatusForbidden, response.ErrCodePaperUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// Start godoc
// POST /api/v1/student/exam/start
// Begins a session for the requested paper. One session per student.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	paperID, err := uuid.Parse(req.PaperID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrCodePaperNotFound)
		return
	}

	paper := h.coordinator.PaperByID(paperID)
	if paper == nil || paper.Grade != claims.Grade {
		response.Fail(c, http.StatusNotFound, response.ErrCodePaperNotFound)
		return
	}
	if !paper.AvailableAt(time.Now()) {
		response.Fail(c, http.StatusForbidden, response.ErrCodePaperUnavailable)
		return
	}

	student, err := h.studentFromClaims(claims)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return
	}

	state, err := h.sessions.Start(student, *paper)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, state)
}

// State godoc
// GET /api/v1/student/exam
// Returns the full session snapshot for restoring the exam screen.
func (h *ExamHandler) State(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.sessions.State(studentID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// AnswerText godoc
// PUT /api/v1/student/exam/answer/text
// Replaces the text of the current question's answer.
func (h *ExamHandler) AnswerText(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req model.AnswerTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if err := h.sessions.RecordText(studentID, req.Text); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// AnswerImage godoc
// PUT /api/v1/student/exam/answer/image
// Attaches an image to the current question's answer.
func (h *ExamHandler) AnswerImage(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req model.AnswerImageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if err := h.sessions.RecordImage(studentID, req.Image); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// RemoveImage godoc
// DELETE /api/v1/student/exam/answer/image
func (h *ExamHandler) RemoveImage(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	if err := h.sessions.RemoveImage(studentID); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// InsertTable godoc
// POST /api/v1/student/exam/answer/table
// Adds an empty table grid to the current answer.
func (h *ExamHandler) InsertTable(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req model.TableCreateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if err := h.sessions.InsertTable(studentID, req.Rows, req.Cols); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// SetTableCell godoc
// PUT /api/v1/student/exam/answer/table/cell
func (h *ExamHandler) SetTableCell(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req model.TableCellRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	if err := h.sessions.SetTableCell(studentID, req.Row, req.Col, req.Value); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// RemoveTable godoc
// DELETE /api/v1/student/exam/answer/table
func (h *ExamHandler) RemoveTable(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	if err := h.sessions.RemoveTable(studentID); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Navigate godoc
// POST /api/v1/student/exam/navigate
// Moves the question cursor by a relative offset, clamped to the paper.
func (h *ExamHandler) Navigate(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCodeValidation, fields)
		return
	}

	state, err := h.sessions.Navigate(studentID, req.Delta)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Stats godoc
// GET /api/v1/student/exam/stats
// Returns the answered/skipped counts shown on the confirmation dialog.
func (h *ExamHandler) Stats(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	stats, err := h.sessions.Stats(studentID)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Submit godoc
// POST /api/v1/student/exam/submit
// Finalizes the session. On failure the session is kept so the student
// can retry.
func (h *ExamHandler) Submit(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	saved, err := h.sessions.Submit(c.Request.Context(), studentID)
	if err != nil {
		h.failSession(c, err)
		return
	}
	if !saved {
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submitted": true})
}

func (h *ExamHandler) studentID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrCodeUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ExamHandler) studentFromClaims(claims *service.Claims) (model.StudentProfile, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.StudentProfile{}, err
	}
	return model.StudentProfile{
		ID:    id,
		Name:  claims.Name,
		Grade: claims.Grade,
	}, nil
}

func (h *ExamHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exam.ErrNoSession):
		response.Fail(c, http.StatusNotFound, response.ErrCodeNoSession)
	case errors.Is(err, exam.ErrSessionActive):
		response.Fail(c, http.StatusConflict, response.ErrCodeSessionActive)
	case errors.Is(err, exam.ErrSubmitInProgress):
		response.Fail(c, http.StatusConflict, response.ErrCodeSubmitInProgress)
	case errors.Is(err, exam.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrCodeNoQuestions)
	case errors.Is(err, exam.ErrImageTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrCodeImageTooLarge)
	case errors.Is(err, exam.ErrNoTable):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrCodeNoTable)
	case errors.Is(err, exam.ErrTableExists):
		response.Fail(c, http.StatusConflict, response.ErrCodeTableExists)
	case errors.Is(err, exam.ErrCellOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrCodeCellOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrCodeInternal)
	}
}
