package exam

import (
	"fmt"
	"regexp"
	"time"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// Phase is the lifecycle state of one exam attempt. Idle is represented by
// the absence of a session.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseSubmitting Phase = "submitting"
)

// session is the ephemeral state of a student actively taking one paper.
// Never persisted; destroyed immediately after a successful submission.
type session struct {
	paper     model.QuestionPaper
	student   model.StudentProfile
	startedAt time.Time
	timeLeft  int // seconds
	index     int
	answers   map[string]model.AnswerSubmission
	phase     Phase
	// autoFired guards the countdown-expiry trigger against double-fire.
	autoFired bool
	events    chan Event
}

func (s *session) currentQuestion() *model.Question {
	return &s.paper.Questions[s.index]
}

// answerFor returns the existing answer for the current question, or a
// fresh one with an empty answer text.
func (s *session) answerFor() model.AnswerSubmission {
	q := s.currentQuestion()
	if a, ok := s.answers[q.ID.String()]; ok {
		return a
	}
	return model.AnswerSubmission{QuestionID: q.ID, AnswerText: ""}
}

func (s *session) putAnswer(a model.AnswerSubmission) {
	s.answers[a.QuestionID.String()] = a
}

// Event is one countdown update pushed to the session's live stream.
// SubmitFailed reports an expired countdown whose submission was refused;
// the session stays live for a retry.
type Event struct {
	TimeLeft      int  `json:"time_left"`
	AutoSubmitted bool `json:"auto_submitted,omitempty"`
	SubmitFailed  bool `json:"submit_failed,omitempty"`
}

// Stats summarizes answer progress for the pre-submit confirmation.
// A question counts as answered when its text is non-blank or an image is
// attached.
type Stats struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Skipped  int `json:"skipped"`
}

// State is the API view of a live session.
type State struct {
	Paper        model.QuestionPaper               `json:"paper"`
	Student      model.StudentProfile              `json:"student"`
	StartedAt    time.Time                         `json:"started_at"`
	TimeLeft     int                               `json:"time_left"`
	CurrentIndex int                               `json:"current_index"`
	Answers      map[string]model.AnswerSubmission `json:"answers"`
	Phase        Phase                             `json:"phase"`
	Stats        Stats                             `json:"stats"`
}

// tableMarkerRe matches the textual marker embedded alongside a grid
// payload so exported views can detect and strip it.
var tableMarkerRe = regexp.MustCompile(`\[TABLE:\d+x\d+\]`)

// TableMarker returns the marker text for an R×C grid.
func TableMarker(rows, cols int) string {
	return fmt.Sprintf("[TABLE:%dx%d]", rows, cols)
}

// StripTableMarker removes any table marker from answer text.
func StripTableMarker(text string) string {
	return tableMarkerRe.ReplaceAllString(text, "")
}
