package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassess/eduassess-backend/internal/model"
)

var (
	errUnavailable = errors.New("connection refused")
	errTooLarge    = errors.New("row exceeds maximum size")
)

func testKindOf(err error) string {
	switch {
	case errors.Is(err, errUnavailable):
		return "unavailable"
	case errors.Is(err, errTooLarge):
		return "too_large"
	default:
		return "other"
	}
}

type fakePaperGW struct {
	papers    []model.QuestionPaper
	insertErr []error // consumed per call
	deleteErr error
	listErr   error
	inserted  []model.QuestionPaper
	deleted   []uuid.UUID
}

func (f *fakePaperGW) ListAll(ctx context.Context) ([]model.QuestionPaper, error) {
	return f.papers, f.listErr
}

func (f *fakePaperGW) Insert(ctx context.Context, p *model.QuestionPaper) error {
	if len(f.insertErr) > 0 {
		err := f.insertErr[0]
		f.insertErr = f.insertErr[1:]
		if err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, *p)
	return nil
}

func (f *fakePaperGW) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStudentGW struct {
	students  []model.StudentProfile
	listErr   error
	upsertErr error
	upserted  []model.StudentProfile
}

func (f *fakeStudentGW) ListAll(ctx context.Context) ([]model.StudentProfile, error) {
	return f.students, f.listErr
}

func (f *fakeStudentGW) Upsert(ctx context.Context, s *model.StudentProfile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, *s)
	return nil
}

type fakeSubmissionGW struct {
	subs      []model.Submission
	listErr   error
	insertErr error
	deleteErr error
	inserted  []model.Submission
	deleted   []uuid.UUID
}

func (f *fakeSubmissionGW) ListAll(ctx context.Context) ([]model.Submission, error) {
	return f.subs, f.listErr
}

func (f *fakeSubmissionGW) Insert(ctx context.Context, s *model.Submission) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *s)
	return nil
}

func (f *fakeSubmissionGW) DeleteByPaper(ctx context.Context, paperID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, paperID)
	return nil
}

type fakeCache struct {
	papers   []model.QuestionPaper
	students []model.StudentProfile
	subs     []model.Submission
	queue    [][]byte
}

func (f *fakeCache) ReadPapers(ctx context.Context) []model.QuestionPaper   { return f.papers }
func (f *fakeCache) WritePapers(ctx context.Context, p []model.QuestionPaper) {
	f.papers = p
}
func (f *fakeCache) ReadStudents(ctx context.Context) []model.StudentProfile { return f.students }
func (f *fakeCache) WriteStudents(ctx context.Context, s []model.StudentProfile) {
	f.students = s
}
func (f *fakeCache) ReadSubmissions(ctx context.Context) []model.Submission { return f.subs }
func (f *fakeCache) WriteSubmissions(ctx context.Context, s []model.Submission) {
	f.subs = s
}
func (f *fakeCache) Enqueue(ctx context.Context, payload []byte) error {
	f.queue = append(f.queue, payload)
	return nil
}

func newTestCoordinator(paperGW *fakePaperGW, studentGW *fakeStudentGW, subGW *fakeSubmissionGW, c *fakeCache) *SyncCoordinator {
	return NewSyncCoordinator(paperGW, studentGW, subGW, c, testKindOf, zerolog.Nop())
}

func samplePaper(grade string) model.QuestionPaper {
	return model.QuestionPaper{
		ID:       uuid.New(),
		Title:    "Algebra Midterm",
		Subject:  "Mathematics",
		Grade:    grade,
		Duration: 60,
		Questions: []model.Question{
			{ID: uuid.New(), Text: "Solve x+2=5", Kind: model.QuestionKindSubjective, Points: 10},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestBootstrapLoadRemote(t *testing.T) {
	paper := samplePaper("9")
	paperGW := &fakePaperGW{papers: []model.QuestionPaper{paper}}
	studentGW := &fakeStudentGW{}
	subGW := &fakeSubmissionGW{}
	cache := &fakeCache{papers: []model.QuestionPaper{samplePaper("8")}}

	c := newTestCoordinator(paperGW, studentGW, subGW, cache)
	c.BootstrapLoad(context.Background())

	assert.False(t, c.Offline())
	papers := c.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, paper.ID, papers[0].ID, "remote data wins, cache is ignored")
}

func TestBootstrapLoadFallsBackToLocal(t *testing.T) {
	cached := samplePaper("10")
	paperGW := &fakePaperGW{listErr: errUnavailable}
	cache := &fakeCache{papers: []model.QuestionPaper{cached}}

	c := newTestCoordinator(paperGW, &fakeStudentGW{}, &fakeSubmissionGW{}, cache)
	c.BootstrapLoad(context.Background())

	assert.True(t, c.Offline())
	papers := c.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, cached.ID, papers[0].ID)
}

func TestBootstrapLoadPartialFailureGoesAllLocal(t *testing.T) {
	remote := samplePaper("9")
	paperGW := &fakePaperGW{papers: []model.QuestionPaper{remote}}
	subGW := &fakeSubmissionGW{listErr: errUnavailable}
	cache := &fakeCache{}

	c := newTestCoordinator(paperGW, &fakeStudentGW{}, subGW, cache)
	c.BootstrapLoad(context.Background())

	assert.True(t, c.Offline())
	assert.Empty(t, c.Papers(), "no mixing of remote papers with local fallback")
}

func TestCreatePaperOnline(t *testing.T) {
	paperGW := &fakePaperGW{}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, &fakeSubmissionGW{}, &fakeCache{})

	outcome := c.CreatePaper(context.Background(), samplePaper("9"))

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.False(t, c.Offline())
	assert.Len(t, paperGW.inserted, 1)
	assert.Len(t, c.Papers(), 1)
}

func TestCreatePaperStrippedRetry(t *testing.T) {
	paperGW := &fakePaperGW{insertErr: []error{errTooLarge}}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, &fakeSubmissionGW{}, &fakeCache{})

	paper := samplePaper("9")
	paper.ReferenceDoc = "data:application/pdf;base64,AAAA"
	outcome := c.CreatePaper(context.Background(), paper)

	assert.Equal(t, OutcomeSavedWithoutAttachment, outcome)
	assert.False(t, c.Offline())
	require.Len(t, paperGW.inserted, 1)
	assert.Empty(t, paperGW.inserted[0].ReferenceDoc)

	papers := c.Papers()
	require.Len(t, papers, 1)
	assert.Empty(t, papers[0].ReferenceDoc, "memory holds what the store accepted")
}

func TestCreatePaperUnavailableSkipsRetryAndGoesLocal(t *testing.T) {
	paperGW := &fakePaperGW{insertErr: []error{errUnavailable, errUnavailable}}
	cache := &fakeCache{}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, &fakeSubmissionGW{}, cache)

	paper := samplePaper("9")
	paper.ReferenceDoc = "data:application/pdf;base64,AAAA"
	outcome := c.CreatePaper(context.Background(), paper)

	assert.Equal(t, OutcomeSuccess, outcome, "local persist still reads as success")
	assert.True(t, c.Offline())
	assert.Empty(t, paperGW.inserted, "no stripped retry on connectivity failure")
	require.Len(t, cache.papers, 1)
	assert.Equal(t, paper.ReferenceDoc, cache.papers[0].ReferenceDoc, "attachment kept locally")
}

func TestCreatePaperOfflineGoesStraightToCache(t *testing.T) {
	paperGW := &fakePaperGW{listErr: errUnavailable}
	cache := &fakeCache{}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, &fakeSubmissionGW{}, cache)
	c.BootstrapLoad(context.Background())
	require.True(t, c.Offline())

	outcome := c.CreatePaper(context.Background(), samplePaper("8"))

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Empty(t, paperGW.inserted)
	assert.Len(t, cache.papers, 1)
}

func TestDeletePaperOptimistic(t *testing.T) {
	paper := samplePaper("9")
	other := samplePaper("9")
	sub := model.Submission{ID: uuid.New(), PaperID: paper.ID}
	keep := model.Submission{ID: uuid.New(), PaperID: other.ID}

	paperGW := &fakePaperGW{papers: []model.QuestionPaper{paper, other}}
	subGW := &fakeSubmissionGW{subs: []model.Submission{sub, keep}}
	cache := &fakeCache{}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, subGW, cache)
	c.BootstrapLoad(context.Background())

	c.DeletePaper(context.Background(), paper.ID)

	papers := c.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, other.ID, papers[0].ID)

	subs := c.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, keep.ID, subs[0].ID, "dependent submissions removed with the paper")

	assert.Equal(t, []uuid.UUID{paper.ID}, paperGW.deleted)
	assert.Equal(t, []uuid.UUID{paper.ID}, subGW.deleted)
	assert.Len(t, cache.papers, 1)
	assert.Len(t, cache.subs, 1)
}

func TestDeletePaperRemoteFailureQueuesReconcile(t *testing.T) {
	paper := samplePaper("9")
	paperGW := &fakePaperGW{papers: []model.QuestionPaper{paper}, deleteErr: errUnavailable}
	subGW := &fakeSubmissionGW{deleteErr: errUnavailable}
	cache := &fakeCache{}
	c := newTestCoordinator(paperGW, &fakeStudentGW{}, subGW, cache)
	c.BootstrapLoad(context.Background())

	c.DeletePaper(context.Background(), paper.ID)

	assert.Empty(t, c.Papers(), "local removal is never rolled back")
	assert.Len(t, cache.queue, 2, "both remote deletes queued for reconcile")
}

func TestRecordSubmissionLocalFirst(t *testing.T) {
	subGW := &fakeSubmissionGW{insertErr: errUnavailable}
	cache := &fakeCache{}
	c := newTestCoordinator(&fakePaperGW{}, &fakeStudentGW{}, subGW, cache)
	c.BootstrapLoad(context.Background())

	sub := model.Submission{ID: uuid.New(), PaperID: uuid.New()}
	ok := c.RecordSubmission(context.Background(), sub)

	assert.True(t, ok, "submission success never depends on the network")
	require.Len(t, c.Submissions(), 1)
	assert.Len(t, cache.subs, 1)
	assert.Len(t, cache.queue, 1, "failed remote insert queued for reconcile")
}

func TestRecordSubmissionPrepends(t *testing.T) {
	c := newTestCoordinator(&fakePaperGW{}, &fakeStudentGW{}, &fakeSubmissionGW{}, &fakeCache{})
	c.BootstrapLoad(context.Background())

	first := model.Submission{ID: uuid.New()}
	second := model.Submission{ID: uuid.New()}
	c.RecordSubmission(context.Background(), first)
	c.RecordSubmission(context.Background(), second)

	subs := c.Submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, second.ID, subs[0].ID, "newest first")
}

func TestResolveStudentReusesExactMatch(t *testing.T) {
	existing := model.StudentProfile{ID: uuid.New(), Name: "Asha", Grade: "9", JoinedAt: time.Now().UTC()}
	studentGW := &fakeStudentGW{students: []model.StudentProfile{existing}}
	c := newTestCoordinator(&fakePaperGW{}, studentGW, &fakeSubmissionGW{}, &fakeCache{})
	c.BootstrapLoad(context.Background())

	got := c.ResolveStudent(context.Background(), "Asha", "9")

	assert.Equal(t, existing.ID, got.ID)
	assert.Empty(t, studentGW.upserted, "no upsert for an existing profile")
}

func TestResolveStudentDistinguishesGrades(t *testing.T) {
	studentGW := &fakeStudentGW{}
	cache := &fakeCache{}
	c := newTestCoordinator(&fakePaperGW{}, studentGW, &fakeSubmissionGW{}, cache)
	c.BootstrapLoad(context.Background())

	ninth := c.ResolveStudent(context.Background(), "Asha", "9")
	tenth := c.ResolveStudent(context.Background(), "Asha", "10")

	assert.NotEqual(t, ninth.ID, tenth.ID, "same name, different grade, distinct profiles")
	assert.Len(t, c.Students(), 2)
	assert.Len(t, studentGW.upserted, 2)
	assert.Len(t, cache.students, 2)
}
