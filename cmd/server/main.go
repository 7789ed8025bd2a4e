package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/database"
	"github.com/yufurikuto/EduExam/internal/handler"
	"github.com/yufurikuto/EduExam/internal/logger"
	"github.com/yufurikuto/EduExam/internal/middleware"
	"github.com/yufurikuto/EduExam/internal/repository"
	"github.com/yufurikuto/EduExam/internal/router"
	"github.com/yufurikuto/EduExam/internal/service"
	"github.com/yufurikuto/EduExam/internal/validator"
	"github.com/yufurikuto/EduExam/internal/worker"
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
		Bool("access_code", cfg.TeacherAccessCodeHash != "").
		Msg("Starting EduExam Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	subjectRepo := repository.NewSubjectRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	subjectService := service.NewSubjectService(subjectRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, subjectRepo, rdb, cfg, log)
	questionService := service.NewQuestionService(examRepo, questionRepo, rdb, log)
	submissionService := service.NewSubmissionService(examRepo, questionRepo, resultRepo, draftRepo, rdb, cfg, log)
	resultService := service.NewResultService(examRepo, questionRepo, resultRepo, rdb, log)
	analysisService := service.NewAnalysisService(examRepo, questionRepo, resultRepo, rdb, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Subject:  handler.NewSubjectHandler(subjectService),
		Exam:     handler.NewExamHandler(examService),
		Question: handler.NewQuestionHandler(questionService),
		Result:   handler.NewResultHandler(resultService, analysisService),
		Student:  handler.NewStudentHandler(examService, submissionService),
		WS:       handler.NewWSHandler(examService, submissionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	autosaveWorker := worker.NewAutosaveWorker(draftRepo, rdb, log)
	analysisWorker := worker.NewAnalysisWorker(analysisService, rdb, log)
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst)

	workers.Add(2)
	go func() { defer workers.Done(); autosaveWorker.Start(workerCtx) }()
	go func() { defer workers.Done(); analysisWorker.Start(workerCtx) }()
	go submitLimiter.StartCleanup(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{
		Auth:          authService,
		SubmitLimiter: submitLimiter,
		HealthChecks: map[string]database.PingFunc{
			"postgres": pool.Ping,
			"redis":    database.RedisPing(rdb),
		},
		Log: log,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	// 2. Stop background workers and wait for the draft queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
