package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/cache"
	"github.com/eduassess/eduassess-backend/internal/repository"
	"github.com/eduassess/eduassess-backend/internal/store"
)

// ReconcileWorker consumes the reconcile queue and replays remote writes
// that failed while the application was online. The optimistic local commit
// already happened; this worker only repairs remote drift, so deletes that
// keep failing are retried rather than surfaced.
type ReconcileWorker struct {
	cache       *cache.Store
	paperRepo   *repository.PaperRepository
	studentRepo *repository.StudentRepository
	subRepo     *repository.SubmissionRepository
	log         zerolog.Logger
}

// NewReconcileWorker creates a new ReconcileWorker.
func NewReconcileWorker(
	c *cache.Store,
	paperRepo *repository.PaperRepository,
	studentRepo *repository.StudentRepository,
	subRepo *repository.SubmissionRepository,
	log zerolog.Logger,
) *ReconcileWorker {
	return &ReconcileWorker{
		cache:       c,
		paperRepo:   paperRepo,
		studentRepo: studentRepo,
		subRepo:     subRepo,
		log:         log.With().Str("component", "reconcile_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *ReconcileWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ReconcileWorker) processNext(ctx context.Context) {
	payload, err := w.cache.Dequeue(ctx, time.Second)
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Dequeue error")
		}
		return
	}

	task, err := store.UnmarshalReconcileTask(payload)
	if err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping task")
		return
	}

	if err := w.apply(ctx, task); err != nil {
		w.log.Error().Err(err).
			Str("op", string(task.Op)).
			Msg("Replay failed, retrying in 5s")
		if reErr := w.cache.Requeue(ctx, payload); reErr != nil {
			w.log.Error().Err(reErr).Msg("Requeue failed, task lost")
		}
		backoff(ctx, 5*time.Second)
	}
}

// backoff waits for d, returning early when ctx is cancelled so shutdown
// is never held up by a retry pause.
func backoff(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (w *ReconcileWorker) apply(ctx context.Context, task store.ReconcileTask) error {
	switch task.Op {
	case store.OpDeletePaper:
		return w.paperRepo.Delete(ctx, task.PaperID)
	case store.OpDeleteSubmissions:
		return w.subRepo.DeleteByPaper(ctx, task.PaperID)
	case store.OpInsertSubmission:
		if task.Submission == nil {
			return nil
		}
		err := w.subRepo.Insert(ctx, task.Submission)
		if err != nil && repository.KindOf(err) == repository.KindOther {
			// Likely a duplicate key from an earlier partial success.
			w.log.Warn().Err(err).Str("submission_id", task.Submission.ID.String()).
				Msg("Insert rejected, dropping task")
			return nil
		}
		return err
	case store.OpUpsertStudent:
		if task.Student == nil {
			return nil
		}
		return w.studentRepo.Upsert(ctx, task.Student)
	default:
		w.log.Warn().Str("op", string(task.Op)).Msg("Unknown op, dropping task")
		return nil
	}
}
