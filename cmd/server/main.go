package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/cache"
	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/database"
	"github.com/eduassess/eduassess-backend/internal/exam"
	"github.com/eduassess/eduassess-backend/internal/handler"
	"github.com/eduassess/eduassess-backend/internal/logger"
	"github.com/eduassess/eduassess-backend/internal/repository"
	"github.com/eduassess/eduassess-backend/internal/router"
	"github.com/eduassess/eduassess-backend/internal/service"
	"github.com/eduassess/eduassess-backend/internal/store"
	"github.com/eduassess/eduassess-backend/internal/validator"
	"github.com/eduassess/eduassess-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EduAssess Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	// An unreachable database is not fatal: the coordinator falls back to
	// the local cache and the server keeps serving.
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL unreachable, starting in offline mode")
		pool, err = database.NewLazyPostgresPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid database configuration")
		}
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories and Cache ────────────────────────────
	paperRepo := repository.NewPaperRepository(pool, cfg.MaxRemotePayloadBytes)
	studentRepo := repository.NewStudentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	instructorRepo := repository.NewInstructorRepository(pool)
	cacheStore := cache.New(rdb, log)

	// ─── Initialize Coordinator ────────────────────────────────────────
	coordinator := store.NewSyncCoordinator(
		paperRepo,
		studentRepo,
		submissionRepo,
		cacheStore,
		func(err error) string { return string(repository.KindOf(err)) },
		log,
	)
	coordinator.BootstrapLoad(ctx)

	// ─── Initialize Session Manager ───────────────────────────────────
	sessions := exam.NewSessionManager(coordinator, cfg.MaxAnswerImageBytes, log)
	go sessions.Run(ctx)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, instructorRepo, cacheStore, coordinator, log)
	extractService := service.NewExtractService(cfg, log)
	exportService := service.NewExportService(log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Paper:      handler.NewPaperHandler(coordinator, extractService, cfg, log),
		Submission: handler.NewSubmissionHandler(coordinator, exportService, log),
		Student:    handler.NewStudentHandler(coordinator),
		Exam:       handler.NewExamHandler(coordinator, sessions, log),
		WS:         handler.NewWSHandler(sessions, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(coordinator, extractService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reconcileWorker := worker.NewReconcileWorker(cacheStore, paperRepo, studentRepo, submissionRepo, log)
	workerDone := make(chan struct{})
	go func() {
		reconcileWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the current task to finish.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("Reconcile worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
