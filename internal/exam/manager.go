package exam

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// Session manager errors, surfaced to handlers as retryable states. The
// session and its answers survive every one of them.
var (
	ErrNoSession        = errors.New("no active exam session")
	ErrSessionActive    = errors.New("an exam session is already in progress")
	ErrImageTooLarge    = errors.New("answer image exceeds the size limit")
	ErrNoTable          = errors.New("the current answer has no table")
	ErrTableExists      = errors.New("the current answer already has a table")
	ErrCellOutOfRange   = errors.New("table cell out of range")
	ErrNoQuestions      = errors.New("paper has no questions")
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// Submitter records a finalized submission. Implemented by the sync
// coordinator; the returned bool is its only contract.
type Submitter interface {
	RecordSubmission(ctx context.Context, sub model.Submission) bool
}

// SessionManager owns every live exam attempt, at most one per student.
// A single 1Hz ticker drives all countdowns; expiry triggers the same
// finalize path as an explicit submit.
type SessionManager struct {
	mu            sync.Mutex
	sessions      map[uuid.UUID]*session
	submitter     Submitter
	maxImageBytes int64
	log           zerolog.Logger
}

// NewSessionManager creates a session manager submitting through submitter.
func NewSessionManager(submitter Submitter, maxImageBytes int64, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions:      make(map[uuid.UUID]*session),
		submitter:     submitter,
		maxImageBytes: maxImageBytes,
		log:           log.With().Str("component", "session_manager").Logger(),
	}
}

// Run drives the countdown loop until ctx is cancelled. Call in a goroutine.
func (m *SessionManager) Run(ctx context.Context) {
	m.log.Info().Msg("Countdown loop started")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Countdown loop stopped")
			return
		case <-ticker.C:
			m.tickAll(ctx)
		}
	}
}

// Start opens a session for the student on the given paper: empty answer
// map, countdown seeded from the paper duration, question pointer at the
// first question. Rejects a second concurrent session for the same student.
func (m *SessionManager) Start(student model.StudentProfile, paper model.QuestionPaper) (*State, error) {
	if len(paper.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[student.ID]; ok {
		return nil, ErrSessionActive
	}

	s := &session{
		paper:     paper,
		student:   student,
		startedAt: time.Now().UTC(),
		timeLeft:  paper.Duration * 60,
		index:     0,
		answers:   make(map[string]model.AnswerSubmission),
		phase:     PhaseInProgress,
		events:    make(chan Event, 8),
	}
	m.sessions[student.ID] = s
	m.log.Info().
		Str("student_id", student.ID.String()).
		Str("paper_id", paper.ID.String()).
		Int("seconds", s.timeLeft).
		Msg("Exam session started")
	return snapshot(s), nil
}

// State returns the live view of the student's session.
func (m *SessionManager) State(studentID uuid.UUID) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[studentID]
	if !ok {
		return nil, ErrNoSession
	}
	return snapshot(s), nil
}

// Subscribe returns the session's countdown event stream.
func (m *SessionManager) Subscribe(studentID uuid.UUID) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[studentID]
	if !ok {
		return nil, ErrNoSession
	}
	return s.events, nil
}

// RecordText upserts the current question's answer text, preserving any
// image or table payload on the entry. Multiple-choice selections arrive
// here as the option's literal text.
func (m *SessionManager) RecordText(studentID uuid.UUID, text string) error {
	return m.withSession(studentID, func(s *session) error {
		a := s.answerFor()
		a.AnswerText = text
		s.putAnswer(a)
		return nil
	})
}

// RecordImage attaches a base64 data URI to the current question's answer.
// Oversized payloads are rejected with no state mutation.
func (m *SessionManager) RecordImage(studentID uuid.UUID, imageURI string) error {
	return m.withSession(studentID, func(s *session) error {
		if int64(len(imageURI)) > m.maxImageBytes {
			return ErrImageTooLarge
		}
		a := s.answerFor()
		a.ImageURI = imageURI
		s.putAnswer(a)
		return nil
	})
}

// RemoveImage detaches the current question's answer image.
func (m *SessionManager) RemoveImage(studentID uuid.UUID) error {
	return m.withSession(studentID, func(s *session) error {
		a := s.answerFor()
		a.ImageURI = ""
		s.putAnswer(a)
		return nil
	})
}

// InsertTable embeds a marker into the current answer text and attaches an
// R×C grid of empty strings.
func (m *SessionManager) InsertTable(studentID uuid.UUID, rows, cols int) error {
	return m.withSession(studentID, func(s *session) error {
		a := s.answerFor()
		if a.Table != nil {
			return ErrTableExists
		}
		grid := make([][]string, rows)
		for i := range grid {
			grid[i] = make([]string, cols)
		}
		a.Table = grid
		a.AnswerText += TableMarker(rows, cols)
		s.putAnswer(a)
		return nil
	})
}

// SetTableCell mutates one grid cell in place.
func (m *SessionManager) SetTableCell(studentID uuid.UUID, row, col int, value string) error {
	return m.withSession(studentID, func(s *session) error {
		a := s.answerFor()
		if a.Table == nil {
			return ErrNoTable
		}
		if row < 0 || row >= len(a.Table) || col < 0 || col >= len(a.Table[row]) {
			return ErrCellOutOfRange
		}
		a.Table[row][col] = value
		s.putAnswer(a)
		return nil
	})
}

// RemoveTable strips both the marker text and the grid payload.
func (m *SessionManager) RemoveTable(studentID uuid.UUID) error {
	return m.withSession(studentID, func(s *session) error {
		a := s.answerFor()
		if a.Table == nil {
			return ErrNoTable
		}
		a.Table = nil
		a.AnswerText = StripTableMarker(a.AnswerText)
		s.putAnswer(a)
		return nil
	})
}

// Navigate moves the question pointer by delta, clamped to the valid
// range. Answers are unaffected.
func (m *SessionManager) Navigate(studentID uuid.UUID, delta int) (*State, error) {
	var st *State
	err := m.withSession(studentID, func(s *session) error {
		s.index += delta
		if s.index < 0 {
			s.index = 0
		}
		if max := len(s.paper.Questions) - 1; s.index > max {
			s.index = max
		}
		st = snapshot(s)
		return nil
	})
	return st, err
}

// Submit finalizes the session on explicit user confirmation. It shares the
// finalize path with countdown expiry. On a falsy coordinator result the
// session stays live and the caller sees ok=false for a retry prompt.
func (m *SessionManager) Submit(ctx context.Context, studentID uuid.UUID) (bool, error) {
	m.mu.Lock()
	s, ok := m.sessions[studentID]
	if !ok {
		m.mu.Unlock()
		return false, ErrNoSession
	}
	if s.phase == PhaseSubmitting {
		m.mu.Unlock()
		return false, ErrSubmitInProgress
	}
	s.phase = PhaseSubmitting
	m.mu.Unlock()

	return m.finalize(ctx, studentID, false), nil
}

// Stats reports total/answered/skipped for the student's session.
func (m *SessionManager) Stats(studentID uuid.UUID) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[studentID]
	if !ok {
		return Stats{}, ErrNoSession
	}
	return computeStats(s), nil
}

// tickAll decrements every in-progress countdown. A session reaching zero
// fires auto-submission exactly once, through the same finalize path as an
// explicit submit.
func (m *SessionManager) tickAll(ctx context.Context) {
	m.mu.Lock()
	var expired []uuid.UUID
	for studentID, s := range m.sessions {
		if s.phase != PhaseInProgress || s.timeLeft == 0 {
			continue
		}
		s.timeLeft--
		pushEvent(s, Event{TimeLeft: s.timeLeft})
		if s.timeLeft == 0 && !s.autoFired {
			s.autoFired = true
			s.phase = PhaseSubmitting
			expired = append(expired, studentID)
		}
	}
	m.mu.Unlock()

	for _, studentID := range expired {
		m.log.Info().Str("student_id", studentID.String()).Msg("Countdown expired, auto-submitting")
		m.finalize(ctx, studentID, true)
	}
}

// finalize builds the immutable Submission snapshot and hands it to the
// coordinator. Success clears the session back to idle; failure keeps the
// session and every answer intact.
func (m *SessionManager) finalize(ctx context.Context, studentID uuid.UUID, auto bool) bool {
	m.mu.Lock()
	s, ok := m.sessions[studentID]
	if !ok {
		m.mu.Unlock()
		return false
	}

	sub := model.Submission{
		ID:           uuid.New(),
		PaperID:      s.paper.ID,
		PaperTitle:   s.paper.Title,
		StudentID:    s.student.ID,
		StudentName:  s.student.Name,
		StudentGrade: s.student.Grade,
		SubmittedAt:  time.Now().UTC(),
		Answers:      cloneAnswers(s.answers),
	}
	m.mu.Unlock()

	ok = m.submitter.RecordSubmission(ctx, sub)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		// Never discard answers on a failed attempt.
		if s, still := m.sessions[studentID]; still {
			s.phase = PhaseInProgress
			if auto {
				pushEvent(s, Event{TimeLeft: 0, SubmitFailed: true})
			}
		}
		m.log.Warn().Str("student_id", studentID.String()).Msg("Submission failed, session retained")
		return false
	}

	if s, still := m.sessions[studentID]; still {
		if auto {
			pushEvent(s, Event{TimeLeft: 0, AutoSubmitted: true})
		}
		close(s.events)
		delete(m.sessions, studentID)
	}
	m.log.Info().
		Str("student_id", studentID.String()).
		Str("submission_id", sub.ID.String()).
		Bool("auto", auto).
		Msg("Exam submitted")
	return true
}

// withSession runs fn with the student's session under the manager lock.
// Mutations are refused while a submission is in flight; the attempt either
// clears the session or drops it back to in-progress.
func (m *SessionManager) withSession(studentID uuid.UUID, fn func(*session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[studentID]
	if !ok {
		return ErrNoSession
	}
	if s.phase == PhaseSubmitting {
		return ErrSubmitInProgress
	}
	return fn(s)
}

// cloneAnswers deep-copies an answer map, table grids included, so the
// result shares no backing arrays with the live session.
func cloneAnswers(src map[string]model.AnswerSubmission) map[string]model.AnswerSubmission {
	dst := make(map[string]model.AnswerSubmission, len(src))
	for k, v := range src {
		if v.Table != nil {
			grid := make([][]string, len(v.Table))
			for i, row := range v.Table {
				grid[i] = append([]string(nil), row...)
			}
			v.Table = grid
		}
		dst[k] = v
	}
	return dst
}

func snapshot(s *session) *State {
	return &State{
		Paper:        s.paper,
		Student:      s.student,
		StartedAt:    s.startedAt,
		TimeLeft:     s.timeLeft,
		CurrentIndex: s.index,
		Answers:      cloneAnswers(s.answers),
		Phase:        s.phase,
		Stats:        computeStats(s),
	}
}

// computeStats iterates answers in the paper's question order.
func computeStats(s *session) Stats {
	stats := Stats{Total: len(s.paper.Questions)}
	for _, q := range s.paper.Questions {
		a, ok := s.answers[q.ID.String()]
		if !ok {
			continue
		}
		if strings.TrimSpace(StripTableMarker(a.AnswerText)) != "" || a.ImageURI != "" {
			stats.Answered++
		}
	}
	stats.Skipped = stats.Total - stats.Answered
	return stats
}

// pushEvent delivers without blocking the tick loop; a slow or absent
// subscriber just misses intermediate ticks.
func pushEvent(s *session, ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
