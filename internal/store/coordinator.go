package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/model"
)

// SaveOutcome is the closed set of caller-visible results for durable writes.
type SaveOutcome string

const (
	OutcomeSuccess SaveOutcome = "success"
	// OutcomeSavedWithoutAttachment means the record was stored remotely but
	// its reference document was stripped to fit the backend size limit.
	OutcomeSavedWithoutAttachment SaveOutcome = "saved_without_attachment"
	OutcomeFailed                 SaveOutcome = "failed"
)

// PaperGateway is the remote store surface for question papers.
type PaperGateway interface {
	ListAll(ctx context.Context) ([]model.QuestionPaper, error)
	Insert(ctx context.Context, p *model.QuestionPaper) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentGateway is the remote store surface for student profiles.
type StudentGateway interface {
	ListAll(ctx context.Context) ([]model.StudentProfile, error)
	Upsert(ctx context.Context, s *model.StudentProfile) error
}

// SubmissionGateway is the remote store surface for submissions.
type SubmissionGateway interface {
	ListAll(ctx context.Context) ([]model.Submission, error)
	Insert(ctx context.Context, s *model.Submission) error
	DeleteByPaper(ctx context.Context, paperID uuid.UUID) error
}

// ErrorKinder classifies a gateway error. Implemented by the repository
// package; injected so the coordinator stays free of driver imports.
type ErrorKinder func(error) string

// KindUnavailable mirrors repository.KindUnavailable. A connectivity
// failure skips the stripped-attachment retry and goes straight to the
// local fallback — only store-side rejections are worth a second attempt.
const KindUnavailable = "unavailable"

// LocalCache is the fallback persistence surface. Reads default to empty
// lists; writes are best-effort and last-writer-wins.
type LocalCache interface {
	ReadPapers(ctx context.Context) []model.QuestionPaper
	WritePapers(ctx context.Context, papers []model.QuestionPaper)
	ReadStudents(ctx context.Context) []model.StudentProfile
	WriteStudents(ctx context.Context, students []model.StudentProfile)
	ReadSubmissions(ctx context.Context) []model.Submission
	WriteSubmissions(ctx context.Context, subs []model.Submission)
	Enqueue(ctx context.Context, payload []byte) error
}

// SyncCoordinator owns the in-memory record lists and the application-wide
// offline flag. It is the only component that mutates either. Every write
// degrades gracefully: remote first when online, local cache as fallback,
// and no operation ever returns an error to its caller — only outcome tags.
//
// The offline flag is sticky: once a write path trips it, the process stays
// in local mode until restart. There is no reconnection probing.
type SyncCoordinator struct {
	mu          sync.RWMutex
	papers      []model.QuestionPaper
	students    []model.StudentProfile
	submissions []model.Submission
	offline     bool

	paperGW      PaperGateway
	studentGW    StudentGateway
	submissionGW SubmissionGateway
	cache        LocalCache
	kindOf       ErrorKinder
	log          zerolog.Logger
}

// NewSyncCoordinator creates a coordinator over the given gateways and cache.
func NewSyncCoordinator(
	paperGW PaperGateway,
	studentGW StudentGateway,
	submissionGW SubmissionGateway,
	cache LocalCache,
	kindOf ErrorKinder,
	log zerolog.Logger,
) *SyncCoordinator {
	return &SyncCoordinator{
		paperGW:      paperGW,
		studentGW:    studentGW,
		submissionGW: submissionGW,
		cache:        cache,
		kindOf:       kindOf,
		log:          log.With().Str("component", "sync_coordinator").Logger(),
	}
}

// BootstrapLoad fills the in-memory state from exactly one source: the
// remote store if every list fetch succeeds, otherwise the local cache for
// all record kinds. Never a merge of both.
func (c *SyncCoordinator) BootstrapLoad(ctx context.Context) {
	papers, errP := c.paperGW.ListAll(ctx)
	var students []model.StudentProfile
	var subs []model.Submission
	var errS, errU error
	if errP == nil {
		subs, errS = c.submissionGW.ListAll(ctx)
	}
	if errP == nil && errS == nil {
		students, errU = c.studentGW.ListAll(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if errP != nil || errS != nil || errU != nil {
		firstErr := errP
		if firstErr == nil {
			firstErr = errS
		}
		if firstErr == nil {
			firstErr = errU
		}
		c.log.Warn().Err(firstErr).Msg("Remote load failed, switching to local mode")
		c.offline = true
		c.papers = c.cache.ReadPapers(ctx)
		c.students = c.cache.ReadStudents(ctx)
		c.submissions = c.cache.ReadSubmissions(ctx)
		return
	}

	c.offline = false
	c.papers = papers
	c.students = students
	c.submissions = subs
	c.log.Info().
		Int("papers", len(papers)).
		Int("students", len(students)).
		Int("submissions", len(subs)).
		Msg("Remote load complete")
}

// Offline reports whether durable writes are local-cache-only.
func (c *SyncCoordinator) Offline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offline
}

// Papers returns a snapshot of the in-memory paper list, newest first.
func (c *SyncCoordinator) Papers() []model.QuestionPaper {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.QuestionPaper, len(c.papers))
	copy(out, c.papers)
	return out
}

// PaperByID returns the paper with the given id, or nil.
func (c *SyncCoordinator) PaperByID(id uuid.UUID) *model.QuestionPaper {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.papers {
		if c.papers[i].ID == id {
			p := c.papers[i]
			return &p
		}
	}
	return nil
}

// Students returns a snapshot of the in-memory roster.
func (c *SyncCoordinator) Students() []model.StudentProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.StudentProfile, len(c.students))
	copy(out, c.students)
	return out
}

// Submissions returns a snapshot of the in-memory submission list, newest first.
func (c *SyncCoordinator) Submissions() []model.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Submission, len(c.submissions))
	copy(out, c.submissions)
	return out
}

// SubmissionByID returns the submission with the given id, or nil.
func (c *SyncCoordinator) SubmissionByID(id uuid.UUID) *model.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.submissions {
		if c.submissions[i].ID == id {
			s := c.submissions[i]
			return &s
		}
	}
	return nil
}

// CreatePaper stores a new paper. When online it inserts remotely, retrying
// once with the reference document stripped if the first attempt fails (the
// hosted store rejects oversized rows); any further failure falls back to
// the local cache and flips the offline flag. The write is never lost from
// the caller's perspective — only its destination changes.
func (c *SyncCoordinator) CreatePaper(ctx context.Context, paper model.QuestionPaper) SaveOutcome {
	if c.Offline() {
		c.commitPaperLocal(ctx, paper)
		return OutcomeSuccess
	}

	err := c.paperGW.Insert(ctx, &paper)
	if err == nil {
		c.prependPaper(paper)
		return OutcomeSuccess
	}

	if c.kindOf(err) != KindUnavailable && paper.ReferenceDoc != "" {
		stripped := paper
		stripped.ReferenceDoc = ""
		if retryErr := c.paperGW.Insert(ctx, &stripped); retryErr == nil {
			c.log.Warn().Str("paper_id", paper.ID.String()).
				Msg("Paper stored without reference document (size limit)")
			c.prependPaper(stripped)
			return OutcomeSavedWithoutAttachment
		}
	}

	c.log.Warn().Err(err).Str("paper_id", paper.ID.String()).
		Msg("Remote insert failed, switching to local mode")
	c.mu.Lock()
	c.offline = true
	c.mu.Unlock()
	c.commitPaperLocal(ctx, paper)
	return OutcomeSuccess
}

// DeletePaper optimistically removes the paper and its dependent
// submissions from memory and the local cache, then issues best-effort
// remote deletes when online. Remote failures are logged and queued for
// reconciliation, never rolled back locally.
func (c *SyncCoordinator) DeletePaper(ctx context.Context, paperID uuid.UUID) {
	c.mu.Lock()
	papers := c.papers[:0:0]
	for _, p := range c.papers {
		if p.ID != paperID {
			papers = append(papers, p)
		}
	}
	c.papers = papers

	subs := c.submissions[:0:0]
	for _, s := range c.submissions {
		if s.PaperID != paperID {
			subs = append(subs, s)
		}
	}
	c.submissions = subs

	papersCopy := make([]model.QuestionPaper, len(c.papers))
	copy(papersCopy, c.papers)
	subsCopy := make([]model.Submission, len(c.submissions))
	copy(subsCopy, c.submissions)
	online := !c.offline
	c.mu.Unlock()

	c.cache.WritePapers(ctx, papersCopy)
	c.cache.WriteSubmissions(ctx, subsCopy)

	if !online {
		return
	}

	if err := c.submissionGW.DeleteByPaper(ctx, paperID); err != nil {
		c.log.Error().Err(err).Str("paper_id", paperID.String()).
			Msg("Remote submission delete failed, queued for reconcile")
		c.enqueue(ctx, ReconcileTask{Op: OpDeleteSubmissions, PaperID: paperID})
	}
	if err := c.paperGW.Delete(ctx, paperID); err != nil {
		c.log.Error().Err(err).Str("paper_id", paperID.String()).
			Msg("Remote paper delete failed, queued for reconcile")
		c.enqueue(ctx, ReconcileTask{Op: OpDeletePaper, PaperID: paperID})
	}
}

// RecordSubmission appends the submission to memory and the local cache
// first, so the student-facing success never waits on the network. The
// remote insert is best-effort; its failure is logged and queued, and the
// caller still sees success.
func (c *SyncCoordinator) RecordSubmission(ctx context.Context, sub model.Submission) bool {
	c.mu.Lock()
	c.submissions = append([]model.Submission{sub}, c.submissions...)
	subsCopy := make([]model.Submission, len(c.submissions))
	copy(subsCopy, c.submissions)
	online := !c.offline
	c.mu.Unlock()

	c.cache.WriteSubmissions(ctx, subsCopy)

	if online {
		if err := c.submissionGW.Insert(ctx, &sub); err != nil {
			c.log.Warn().Err(err).Str("submission_id", sub.ID.String()).
				Msg("Remote submission insert failed, queued for reconcile")
			c.enqueue(ctx, ReconcileTask{Op: OpInsertSubmission, Submission: &sub})
		}
	}
	return true
}

// ResolveStudent reuses the roster entry matching (name, grade) exactly, or
// mints a new profile, persists it locally, and upserts it remotely when
// online. Two students sharing a name but not a grade get distinct profiles.
func (c *SyncCoordinator) ResolveStudent(ctx context.Context, name, grade string) model.StudentProfile {
	c.mu.Lock()
	for _, s := range c.students {
		if s.Name == name && s.Grade == grade {
			c.mu.Unlock()
			return s
		}
	}

	student := model.StudentProfile{
		ID:       uuid.New(),
		Name:     name,
		Grade:    grade,
		JoinedAt: time.Now().UTC(),
	}
	c.students = append(c.students, student)
	studentsCopy := make([]model.StudentProfile, len(c.students))
	copy(studentsCopy, c.students)
	online := !c.offline
	c.mu.Unlock()

	c.cache.WriteStudents(ctx, studentsCopy)

	if online {
		if err := c.studentGW.Upsert(ctx, &student); err != nil {
			c.log.Warn().Err(err).Str("student_id", student.ID.String()).
				Msg("Remote student upsert failed, queued for reconcile")
			c.enqueue(ctx, ReconcileTask{Op: OpUpsertStudent, Student: &student})
		}
	}
	return student
}

func (c *SyncCoordinator) prependPaper(paper model.QuestionPaper) {
	c.mu.Lock()
	c.papers = append([]model.QuestionPaper{paper}, c.papers...)
	c.mu.Unlock()
}

func (c *SyncCoordinator) commitPaperLocal(ctx context.Context, paper model.QuestionPaper) {
	c.mu.Lock()
	c.papers = append([]model.QuestionPaper{paper}, c.papers...)
	papersCopy := make([]model.QuestionPaper, len(c.papers))
	copy(papersCopy, c.papers)
	c.mu.Unlock()
	c.cache.WritePapers(ctx, papersCopy)
}

func (c *SyncCoordinator) enqueue(ctx context.Context, task ReconcileTask) {
	payload, err := task.Marshal()
	if err != nil {
		c.log.Error().Err(err).Msg("Reconcile task encode failed")
		return
	}
	if err := c.cache.Enqueue(ctx, payload); err != nil {
		c.log.Error().Err(err).Msg("Reconcile enqueue failed")
	}
}
