package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/lacquer/internal/adapters/colordistance"
	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/app/services"
	"github.com/fr0stylo/lacquer/internal/config"
	"github.com/fr0stylo/lacquer/internal/connectors"
	"github.com/fr0stylo/lacquer/internal/db"
	"github.com/fr0stylo/lacquer/internal/hexdetect"
	"github.com/fr0stylo/lacquer/internal/observability"
	"github.com/fr0stylo/lacquer/internal/server"
	"github.com/fr0stylo/lacquer/internal/server/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	log := observability.NewLogger(observability.LoggerOptions{Level: cfg.LogLevel, Console: cfg.IsLocalDevelopment()})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
		Environment:       cfg.Environment,
		Process:           "server",
		Queue:             cfg.Worker.QueueName,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn("Failed to flush telemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()
	if cfg.Database.LogTiming {
		go database.LogLatencyStats(ctx, log, time.Minute, 5)
	}
	store := sqlite.NewStore(database)

	var detector ports.HexDetector
	if cfg.HexDetect.Enabled {
		d, err := hexdetect.New(cfg.HexDetect, nil)
		if err != nil {
			return fmt.Errorf("configure hex detection: %w", err)
		}
		detector = d
	}

	captures := services.NewCaptureService(store, services.NewConfidenceMatcher(colordistance.CIEDE2000), services.CaptureOptions{
		MaxFrameBytes:       int64(cfg.Capture.MaxFrameBytes),
		MaxFinalizeAttempts: cfg.Capture.MaxFinalizeAttempts,
		HexDetector:         detector,
	})
	jobs := services.NewJobService(store, store, cfg.Worker.QueueName)

	if cfg.Worker.InProcess {
		registry, err := connectors.FromConfig(cfg.Connectors, observability.NewHTTPClient(cfg.Connectors.Timeout))
		if err != nil {
			return fmt.Errorf("configure connectors: %w", err)
		}
		worker := services.NewWorker(services.WorkerDeps{
			Jobs:        store,
			Catalog:     store,
			Inventory:   store,
			Connectors:  registry,
			HexDetector: detector,
			Logger:      log,
		})
		consumer := services.NewConsumer(store, worker, services.ConsumerOptions{
			Queue:         cfg.Worker.QueueName,
			PollInterval:  cfg.Worker.PollInterval,
			Visibility:    cfg.Worker.VisibilityTimeout,
			MaxDeliveries: cfg.Worker.MaxDeliveries,
			Logger:        log,
		})
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("In-process ingestion worker stopped", "error", err)
			}
		}()
		log.Info("Running ingestion worker in-process", "queue", cfg.Worker.QueueName, "sources", registry.Sources())
	}

	routes.ConfigureAuth(routes.AuthConfig{
		SessionKey:         cfg.Auth.SessionSecret,
		GitHubClientID:     cfg.Auth.GitHubClientID,
		GitHubClientSecret: cfg.Auth.GitHubClientSecret,
		GitHubCallbackURL:  callbackURL(cfg),
		SecureCookies:      cfg.Auth.SecureCookie,
	})
	if cfg.Auth.DevAuthUserID > 0 {
		log.Warn("Dev auth bypass enabled", "user_id", cfg.Auth.DevAuthUserID)
	}
	requireAuth := routes.RequireAuth(cfg.Auth.DevAuthUserID)
	requireAdmin := routes.RequireAdmin(cfg.IsAdmin)

	srv := server.New(log, server.Options{
		ServiceName: cfg.Observability.ServiceName,
		BodyLimit:   bodyLimit(cfg.Capture.MaxFrameBytes),
	})
	srv.RegisterRouter(routes.NewHealthRoutes(database))
	srv.RegisterRouter(routes.NewAuthRoutes(store, cfg.IsLocalDevelopment()))
	srv.RegisterRouter(routes.NewCaptureRoutes(captures, requireAuth))
	srv.RegisterRouter(routes.NewIngestionRoutes(jobs, requireAuth, requireAdmin))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "env", cfg.Environment)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func callbackURL(cfg config.Config) string {
	if cfg.Auth.GitHubCallbackURL != "" {
		return cfg.Auth.GitHubCallbackURL
	}
	return fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
}

// bodyLimit leaves room for base64 inflation of the largest accepted frame.
func bodyLimit(maxFrameBytes int) string {
	if maxFrameBytes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dK", (maxFrameBytes*2)/1024+64)
}
