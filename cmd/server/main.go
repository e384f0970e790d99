package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/database"
	"github.com/leolibre/leolibre-backend/internal/generator"
	"github.com/leolibre/leolibre-backend/internal/handler"
	"github.com/leolibre/leolibre-backend/internal/logger"
	"github.com/leolibre/leolibre-backend/internal/repository"
	"github.com/leolibre/leolibre-backend/internal/router"
	"github.com/leolibre/leolibre-backend/internal/service"
	"github.com/leolibre/leolibre-backend/internal/storage"
	"github.com/leolibre/leolibre-backend/internal/validator"
	"github.com/leolibre/leolibre-backend/internal/worker"
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
		Msg("Starting LeoLibre Backend")

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

	// ─── Connect to Object Storage ─────────────────────────────────────
	objectStore, err := storage.NewObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to object storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	clubRepo := repository.NewClubRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	rankingRepo := repository.NewRankingRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	clubService := service.NewClubService(clubRepo, membershipRepo, authService, log)
	resourceService := service.NewResourceService(resourceRepo, membershipRepo, objectStore, cfg.MaxUploadBytes, log)
	generatorClient := generator.NewClient(cfg.GeneratorURL, &http.Client{Timeout: cfg.GeneratorTimeout}, log)
	quizService := service.NewQuizService(quizRepo, resourceService, generatorClient, log)
	rankingService := service.NewRankingService(rankingRepo, rdb, log)
	submissionService := service.NewSubmissionService(quizRepo, quizRepo, rdb, rankingService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Club:     handler.NewClubHandler(clubService),
		Resource: handler.NewResourceHandler(resourceService),
		Quiz:     handler.NewQuizHandler(quizService, submissionService),
		Ranking:  handler.NewRankingHandler(rankingService),
		WS:       handler.NewWSHandler(rankingService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	statsWorker := worker.NewStatsWorker(pool, rdb, log)
	go statsWorker.Start(workerCtx)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
