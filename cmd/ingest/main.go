package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cortexa-systems/cortexa-ingest/internal/compression"
	"github.com/cortexa-systems/cortexa-ingest/internal/config"
	"github.com/cortexa-systems/cortexa-ingest/internal/handlers"
	"github.com/cortexa-systems/cortexa-ingest/internal/logging"
	"github.com/cortexa-systems/cortexa-ingest/internal/notifier"
	"github.com/cortexa-systems/cortexa-ingest/internal/ratelimit"
	"github.com/cortexa-systems/cortexa-ingest/internal/repository"
	"github.com/cortexa-systems/cortexa-ingest/internal/server"
	"github.com/cortexa-systems/cortexa-ingest/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("ingest"))
	logging.SetDefault(logger)

	slog.Info("Starting EEG ingest service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Run database migrations
	slog.Info("Running database migrations")
	m, err := migrate.New("file://migrations", cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database migrations completed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, err := repository.NewPostgresRepository(ctx, cfg.Database.URL())
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer repo.Close()
	slog.Info("Connected to Postgres",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	// The zstd decoder must exist before the first request is served.
	decompressor, err := compression.NewDecompressor()
	if err != nil {
		log.Fatalf("Failed to initialize decompressor: %v", err)
	}
	defer decompressor.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	publisher, err := notifier.NewJetStreamPublisher(ctx, notifier.Config{
		URL:      cfg.NATS.URL,
		Username: cfg.NATS.Username,
		Password: cfg.NATS.Password,
		Stream:   cfg.NATS.Stream,
		Subject:  cfg.NATS.Subject,
	})
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer publisher.Close()
	slog.Info("Connected to NATS",
		slog.String("url", cfg.NATS.URL),
		slog.String("stream", cfg.NATS.Stream),
		slog.String("subject", cfg.NATS.Subject),
	)

	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.Ingestion.RateLimitEnabled {
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.Ingestion.RateLimitRequests,
			cfg.Ingestion.RateLimitWindow,
		)
		if err != nil {
			slog.Warn("Failed to initialize Redis rate limiter, continuing without rate limiting",
				logging.Error(err))
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			slog.Info("Rate limiting enabled",
				slog.Int("requests", cfg.Ingestion.RateLimitRequests),
				slog.String("window", cfg.Ingestion.RateLimitWindow.String()),
			)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
		slog.Info("Rate limiting disabled")
	}
	defer rateLimiter.Close()

	ingestService := service.NewIngestService(decompressor, repo, publisher, logger)
	handler := handlers.NewIngestHandler(
		ingestService, rateLimiter, repo, publisher,
		cfg.Ingestion.MaxPayloadBytes, logger,
	)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Ingest service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped")
}
