package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/app/services"
	"github.com/fr0stylo/lacquer/internal/config"
	"github.com/fr0stylo/lacquer/internal/connectors"
	"github.com/fr0stylo/lacquer/internal/db"
	"github.com/fr0stylo/lacquer/internal/hexdetect"
	"github.com/fr0stylo/lacquer/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadForTool()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	log := observability.NewLogger(observability.LoggerOptions{Level: cfg.LogLevel, Console: cfg.IsLocalDevelopment()}).
		With("component", "ingestworker")
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serviceName := cfg.Observability.ServiceName + "-worker"
	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       serviceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
		Environment:       cfg.Environment,
		Process:           "ingestworker",
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
		_ = database.Close()
	}()
	if cfg.Database.LogTiming {
		go database.LogLatencyStats(ctx, log, time.Minute, 5)
	}
	store := sqlite.NewStore(database)

	registry, err := connectors.FromConfig(cfg.Connectors, observability.NewHTTPClient(cfg.Connectors.Timeout))
	if err != nil {
		return fmt.Errorf("configure connectors: %w", err)
	}
	var detector ports.HexDetector
	if cfg.HexDetect.Enabled {
		d, err := hexdetect.New(cfg.HexDetect, nil)
		if err != nil {
			return fmt.Errorf("configure hex detection: %w", err)
		}
		detector = d
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

	log.Info("Starting ingestion worker",
		"queue", cfg.Worker.QueueName,
		"sources", registry.Sources(),
		"hex_detection", detector != nil,
	)
	err = consumer.Run(ctx)
	stats := consumer.Stats()
	log.Info("Ingestion worker finished",
		"acked", stats.Acked,
		"rejected", stats.Rejected,
		"retried", stats.Retried,
		"dead_lettered", stats.DeadLettered,
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
