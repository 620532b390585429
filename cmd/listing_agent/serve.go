package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/listing-pipeline/internal/db"
	"github.com/jonathan/listing-pipeline/internal/events"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/server"
	"github.com/jonathan/listing-pipeline/internal/server/ratelimit"
)

// eventBuffer is the per-subscriber backlog of the in-process event bus.
const eventBuffer = 64

var (
	servePort       int
	serveReviewMode string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for pipeline runs, content generation,
section boards, platform requirements and compliance checks.

Runs are kept in PostgreSQL when DATABASE_URL is set and in memory otherwise. Unfinished
runs are resumed on startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveReviewMode, "review-mode", "", "Human review mode: auto or manual")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("review-mode") {
		cfg.ReviewMode = serveReviewMode
	}
	mode, err := pipeline.ParseReviewMode(cfg.ReviewMode)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg, true)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthChecks := make(map[string]server.HealthCheck)

	var store pipeline.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		store = database
		healthChecks["postgres"] = database.Ping
		logger.Info("runs stored in PostgreSQL")
	} else {
		logger.Warn("DATABASE_URL not set, runs are kept in memory")
	}

	bus := events.NewBus(eventBuffer)
	defer bus.Close()
	publishers := events.Multi{bus}
	if cfg.RedisURL != "" {
		redisPub, err := events.NewRedisPublisher(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = redisPub.Close() }()
		publishers = append(publishers, redisPub)
		healthChecks["redis"] = redisPub.Ping
		logger.Info("publishing events to Redis")
	}

	artifactStore, err := newArtifactStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGen()

	orch := pipeline.New(pipeline.Options{
		Store:       store,
		Generator:   gen,
		Artifacts:   artifactStore,
		Publisher:   publishers,
		ReviewMode:  mode,
		ReviewDelay: cfg.ReviewDelay(),
		Concurrency: cfg.GenerationConcurrency,
		Logger:      logger.Named("pipeline"),
	})
	defer orch.Close()

	tokens := server.NewTokenService(cfg.JWTSecret, server.DefaultTokenTTL)
	if tokens == nil {
		logger.Warn("JWT_SECRET not set, review endpoint is unauthenticated")
	}

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		Orchestrator:       orch,
		Bus:                bus,
		Generator:          gen,
		Tokens:             tokens,
		RateLimit:          ratelimit.LoadConfig(),
		SectionConcurrency: cfg.GenerationConcurrency,
		HealthChecks:       healthChecks,
		Logger:             logger.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	recovered, err := orch.RecoverRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover runs: %w", err)
	}
	if recovered > 0 {
		logger.Info("resumed unfinished runs", zap.Int("count", recovered))
	}

	logger.Info("listing pipeline ready",
		zap.Int("port", cfg.Port),
		zap.String("review_mode", string(mode)))
	return srv.Start(ctx)
}
