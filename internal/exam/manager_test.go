package exam

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassess/eduassess-backend/internal/model"
)

type fakeSubmitter struct {
	accept bool
	subs   []model.Submission
}

func (f *fakeSubmitter) RecordSubmission(ctx context.Context, sub model.Submission) bool {
	f.subs = append(f.subs, sub)
	return f.accept
}

// blockingSubmitter parks inside RecordSubmission until released, exposing
// the submitting phase to concurrent calls.
type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) RecordSubmission(ctx context.Context, sub model.Submission) bool {
	close(b.entered)
	<-b.release
	return true
}

func testPaper(questions int) model.QuestionPaper {
	p := model.QuestionPaper{
		ID:       uuid.New(),
		Title:    "Physics Quarterly",
		Subject:  "Physics",
		Grade:    "10",
		Duration: 2,
	}
	for i := 0; i < questions; i++ {
		p.Questions = append(p.Questions, model.Question{
			ID:     uuid.New(),
			Text:   "Describe the experiment",
			Kind:   model.QuestionKindSubjective,
			Points: 10,
		})
	}
	return p
}

func testStudent() model.StudentProfile {
	return model.StudentProfile{ID: uuid.New(), Name: "Ravi", Grade: "10", JoinedAt: time.Now().UTC()}
}

func newTestManager(accept bool) (*SessionManager, *fakeSubmitter) {
	sub := &fakeSubmitter{accept: accept}
	return NewSessionManager(sub, 5*1024*1024, zerolog.Nop()), sub
}

func TestStartSeedsCountdownFromDuration(t *testing.T) {
	m, _ := newTestManager(true)
	paper := testPaper(3)
	paper.Duration = 45

	state, err := m.Start(testStudent(), paper)
	require.NoError(t, err)

	assert.Equal(t, 45*60, state.TimeLeft)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
	assert.Equal(t, PhaseInProgress, state.Phase)
}

func TestStartRejectsSecondSession(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()

	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	_, err = m.Start(student, testPaper(1))
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestStartRejectsEmptyPaper(t *testing.T) {
	m, _ := newTestManager(true)
	_, err := m.Start(testStudent(), testPaper(0))
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestRecordTextPreservesImageAndTable(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	require.NoError(t, m.RecordImage(student.ID, "data:image/png;base64,AAAA"))
	require.NoError(t, m.InsertTable(student.ID, 2, 3))
	require.NoError(t, m.RecordText(student.ID, "see table"+TableMarker(2, 3)))

	state, err := m.State(student.ID)
	require.NoError(t, err)
	require.Len(t, state.Answers, 1)
	for _, a := range state.Answers {
		assert.Equal(t, "data:image/png;base64,AAAA", a.ImageURI)
		assert.Len(t, a.Table, 2)
		assert.True(t, strings.HasPrefix(a.AnswerText, "see table"))
	}
}

func TestRecordImageTooLargeLeavesAnswerUntouched(t *testing.T) {
	sub := &fakeSubmitter{accept: true}
	m := NewSessionManager(sub, 16, zerolog.Nop())
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	require.NoError(t, m.RecordText(student.ID, "kept"))
	err = m.RecordImage(student.ID, strings.Repeat("x", 17))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	state, err := m.State(student.ID)
	require.NoError(t, err)
	for _, a := range state.Answers {
		assert.Equal(t, "kept", a.AnswerText)
		assert.Empty(t, a.ImageURI)
	}
}

func TestTableLifecycle(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	require.NoError(t, m.InsertTable(student.ID, 3, 2))
	assert.ErrorIs(t, m.InsertTable(student.ID, 2, 2), ErrTableExists)

	require.NoError(t, m.SetTableCell(student.ID, 2, 1, "42"))
	assert.ErrorIs(t, m.SetTableCell(student.ID, 3, 0, "x"), ErrCellOutOfRange)
	assert.ErrorIs(t, m.SetTableCell(student.ID, 0, 2, "x"), ErrCellOutOfRange)

	state, err := m.State(student.ID)
	require.NoError(t, err)
	for _, a := range state.Answers {
		assert.Contains(t, a.AnswerText, "[TABLE:3x2]")
		assert.Equal(t, "42", a.Table[2][1])
	}

	require.NoError(t, m.RemoveTable(student.ID))
	assert.ErrorIs(t, m.RemoveTable(student.ID), ErrNoTable)

	state, err = m.State(student.ID)
	require.NoError(t, err)
	for _, a := range state.Answers {
		assert.NotContains(t, a.AnswerText, "[TABLE:")
		assert.Nil(t, a.Table)
	}
}

func TestNavigateClamps(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(3))
	require.NoError(t, err)

	state, err := m.Navigate(student.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)

	state, err = m.Navigate(student.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentIndex)

	state, err = m.Navigate(student.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)
}

func TestStatsCountsBlankTextAsSkipped(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(3))
	require.NoError(t, err)

	require.NoError(t, m.RecordText(student.ID, "an answer"))
	_, err = m.Navigate(student.ID, 1)
	require.NoError(t, err)
	require.NoError(t, m.RecordText(student.ID, "   "))

	stats, err := m.Stats(student.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Answered: 1, Skipped: 2}, stats)
}

func TestStatsCountsImageOnlyAsAnswered(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(2))
	require.NoError(t, err)

	require.NoError(t, m.RecordImage(student.ID, "data:image/png;base64,AAAA"))

	stats, err := m.Stats(student.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Answered: 1, Skipped: 1}, stats)
}

func TestSubmitClearsSessionAndSnapshotsAnswers(t *testing.T) {
	m, sub := newTestManager(true)
	student := testStudent()
	paper := testPaper(2)
	_, err := m.Start(student, paper)
	require.NoError(t, err)
	require.NoError(t, m.RecordText(student.ID, "final answer"))

	ok, err := m.Submit(context.Background(), student.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, sub.subs, 1)
	got := sub.subs[0]
	assert.Equal(t, paper.ID, got.PaperID)
	assert.Equal(t, paper.Title, got.PaperTitle)
	assert.Equal(t, student.ID, got.StudentID)
	assert.Equal(t, student.Name, got.StudentName)
	assert.Equal(t, student.Grade, got.StudentGrade)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "final answer", got.Answers[paper.Questions[0].ID.String()].AnswerText)

	_, err = m.State(student.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFailedSubmitRetainsSession(t *testing.T) {
	m, _ := newTestManager(false)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)
	require.NoError(t, m.RecordText(student.ID, "keep me"))

	ok, err := m.Submit(context.Background(), student.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := m.State(student.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, state.Phase, "session drops back to in-progress for a retry")
	for _, a := range state.Answers {
		assert.Equal(t, "keep me", a.AnswerText)
	}
}

func TestStateSnapshotUnaffectedByLaterTableEdits(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	require.NoError(t, m.InsertTable(student.ID, 2, 2))
	require.NoError(t, m.SetTableCell(student.ID, 0, 0, "before"))

	state, err := m.State(student.ID)
	require.NoError(t, err)

	require.NoError(t, m.SetTableCell(student.ID, 0, 0, "after"))
	for _, a := range state.Answers {
		assert.Equal(t, "before", a.Table[0][0], "an earlier State must not see later edits")
	}
}

func TestFinalizedSubmissionUnaffectedByLaterTableEdits(t *testing.T) {
	m, sub := newTestManager(false)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	require.NoError(t, m.InsertTable(student.ID, 2, 2))
	require.NoError(t, m.SetTableCell(student.ID, 0, 0, "before"))

	ok, err := m.Submit(context.Background(), student.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// The session is live again after the refusal; further edits must not
	// reach into the submission that was already handed off.
	require.NoError(t, m.SetTableCell(student.ID, 0, 0, "after"))
	require.Len(t, sub.subs, 1)
	for _, a := range sub.subs[0].Answers {
		assert.Equal(t, "before", a.Table[0][0])
	}
}

func TestAnswerEditsRejectedWhileSubmitting(t *testing.T) {
	blocker := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	m := NewSessionManager(blocker, 5*1024*1024, zerolog.Nop())
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ok, err := m.Submit(context.Background(), student.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
	}()

	<-blocker.entered
	assert.ErrorIs(t, m.RecordText(student.ID, "too late"), ErrSubmitInProgress)
	assert.ErrorIs(t, m.InsertTable(student.ID, 2, 2), ErrSubmitInProgress)

	close(blocker.release)
	<-done

	_, err = m.State(student.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCountdownAutoSubmitsExactlyOnce(t *testing.T) {
	m, sub := newTestManager(true)
	student := testStudent()
	paper := testPaper(1)
	paper.Duration = 1
	_, err := m.Start(student, paper)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 65; i++ {
		m.tickAll(ctx)
	}

	assert.Len(t, sub.subs, 1, "expiry fires a single submission")
	_, err = m.State(student.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCountdownEventsStreamToSubscriber(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	events, err := m.Subscribe(student.ID)
	require.NoError(t, err)

	m.tickAll(context.Background())
	select {
	case ev := <-events:
		assert.Equal(t, 119, ev.TimeLeft)
	default:
		t.Fatal("expected a tick event")
	}
}

func TestExpiredCountdownRefusalNotifiesAndRetainsSession(t *testing.T) {
	m, _ := newTestManager(false)
	student := testStudent()
	paper := testPaper(1)
	paper.Duration = 1
	_, err := m.Start(student, paper)
	require.NoError(t, err)
	require.NoError(t, m.RecordText(student.ID, "keep me"))

	events, err := m.Subscribe(student.ID)
	require.NoError(t, err)

	var last Event
	drain := func() {
		for {
			select {
			case ev := <-events:
				last = ev
			default:
				return
			}
		}
	}
	for i := 0; i < 60; i++ {
		m.tickAll(context.Background())
		drain()
	}

	assert.True(t, last.SubmitFailed, "subscriber learns the auto-submit was refused")
	assert.Equal(t, 0, last.TimeLeft)

	state, err := m.State(student.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, state.Phase)
	for _, a := range state.Answers {
		assert.Equal(t, "keep me", a.AnswerText)
	}
}

func TestSubmitTwiceWhileInFlight(t *testing.T) {
	m, _ := newTestManager(true)
	student := testStudent()
	_, err := m.Start(student, testPaper(1))
	require.NoError(t, err)

	// First submit succeeds and removes the session, so a second explicit
	// submit reports no session rather than double-recording.
	ok, err := m.Submit(context.Background(), student.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.Submit(context.Background(), student.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}
