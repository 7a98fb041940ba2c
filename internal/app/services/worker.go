package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/observability"
)

// InvalidUserIDMessage is recorded on jobs whose queue message carries an
// unusable userId.
const InvalidUserIDMessage = "Invalid ingestion queue payload: userId is required and must be a positive integer"

// cancelCheckEvery is how many records run between cancellation checks.
const cancelCheckEvery = 25

// Pipeline stages written to metrics.pipeline.stage.
const (
	stageValidate    = "validate"
	stageFetch       = "fetch"
	stageMaterialize = "materialize"
	stageDone        = "done"
	stageCancelled   = "cancelled"
	stageFailed      = "failed"
)

// WorkerDeps are the collaborators of a Worker.
type WorkerDeps struct {
	Jobs       ports.IngestionJobStore
	Catalog    ports.CatalogWriter
	Inventory  ports.InventoryStore
	Connectors ports.ConnectorRegistry
	// HexDetector is optional; jobs asking for hex detection fail without it.
	HexDetector ports.HexDetector
	Logger      *slog.Logger
}

// Worker executes ingestion jobs from queue messages. Handle is safe to call
// again for the same job: terminal jobs short-circuit.
type Worker struct {
	jobs       ports.IngestionJobStore
	catalog    ports.CatalogWriter
	inventory  ports.InventoryStore
	connectors ports.ConnectorRegistry
	detector   ports.HexDetector
	log        *slog.Logger
	now        func() time.Time
}

// NewWorker constructs a worker.
func NewWorker(deps WorkerDeps) *Worker {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		jobs:       deps.Jobs,
		catalog:    deps.Catalog,
		inventory:  deps.Inventory,
		connectors: deps.Connectors,
		detector:   deps.HexDetector,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes one queue message body. It returns nil when the message
// is done with, an ErrInvalidPayload error when it can never be processed,
// and any other error when a retry may succeed. A body that names a live job
// but does not decode fails that job.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	msg, decodeErr := DecodeJobMessage(body)
	if msg.JobID == "" {
		if decodeErr != nil {
			return decodeErr
		}
		return fmt.Errorf("%w: jobId is required", ErrInvalidPayload)
	}
	job, err := w.jobs.GetJob(ctx, msg.JobID)
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: job %s does not exist", ErrInvalidPayload, msg.JobID)
	}
	if err != nil {
		return fmt.Errorf("load job %s: %w", msg.JobID, err)
	}
	if job.Status.Terminal() {
		w.log.DebugContext(ctx, "skipping finished ingestion job", "job_id", job.ID, "status", job.Status)
		return nil
	}

	ctx, span := observability.StartJobSpan(ctx, job.ID, string(job.Source))
	defer span.End()

	run := &jobRun{
		worker:  w,
		job:     job,
		logs:    &jobLog{},
		metrics: domain.JobMetrics{SchemaVersion: domain.JobMetricsVersion},
	}
	run.log = newJobLogger(w.log, run.logs)

	if decodeErr != nil {
		run.metrics.Pipeline = domain.JobPipeline{Stage: stageValidate}
		run.log.ErrorContext(ctx, "rejected queue payload", "error", decodeErr)
		span.RecordError(decodeErr)
		if err := run.finish(ctx, domain.JobStatusFailed, decodeErr.Error()); err != nil {
			return err
		}
		return decodeErr
	}

	err = run.execute(ctx, msg)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

type jobRun struct {
	worker  *Worker
	job     domain.IngestionJob
	log     *slog.Logger
	logs    *jobLog
	metrics domain.JobMetrics

	request   domain.JobRequest
	userID    int64
	connector ports.Connector
}

func (r *jobRun) execute(ctx context.Context, msg domain.IngestionQueueMessage) error {
	r.metrics.Pipeline = domain.JobPipeline{Stage: stageValidate}
	if err := r.validate(ctx, msg); err != nil {
		if finishErr := r.finish(ctx, domain.JobStatusFailed, err.Error()); finishErr != nil {
			return finishErr
		}
		if errors.Is(err, ErrInvalidPayload) {
			return err
		}
		return nil
	}

	started, err := r.worker.jobs.MarkRunning(ctx, r.job.ID, r.worker.now())
	if err != nil {
		return err
	}
	if !started {
		r.log.InfoContext(ctx, "job finished before it started")
		return nil
	}
	r.log.InfoContext(ctx, "ingestion started",
		"source", r.request.Source,
		"page", r.request.Page,
		"page_size", r.request.PageSize,
		"max_records", r.request.MaxRecords,
	)

	cancelled, err := r.pull(ctx)
	switch {
	case ctx.Err() != nil:
		// Shutdown mid-run: leave the job running so redelivery resumes it.
		return ctx.Err()
	case cancelled:
		r.metrics.Pipeline.Stage = stageCancelled
		r.log.WarnContext(ctx, "ingestion stopped after cancellation", "processed", r.metrics.Processed)
		return r.checkpoint(ctx)
	case err != nil:
		r.log.ErrorContext(ctx, "ingestion failed", "error", err)
		return r.finish(ctx, domain.JobStatusFailed, err.Error())
	}
	r.metrics.Pipeline = domain.JobPipeline{Stage: stageDone}
	r.log.InfoContext(ctx, "ingestion finished",
		"processed", r.metrics.Processed,
		"inserted", r.metrics.Inserted,
		"updated", r.metrics.Updated,
		"skipped", r.metrics.Skipped,
	)
	return r.finish(ctx, domain.JobStatusSucceeded, "")
}

// payloadError is a queue payload violation recorded verbatim on the job.
type payloadError string

func (e payloadError) Error() string { return string(e) }

func (e payloadError) Unwrap() error { return ErrInvalidPayload }

// validate checks the payload. Failures are recorded on the job and never retried.
func (r *jobRun) validate(ctx context.Context, msg domain.IngestionQueueMessage) error {
	userID, err := strconv.ParseInt(strings.TrimSpace(msg.UserID), 10, 64)
	if err != nil || userID <= 0 {
		r.log.ErrorContext(ctx, "rejected queue payload", "user_id", msg.UserID)
		return payloadError(InvalidUserIDMessage)
	}
	r.userID = userID

	request := r.job.Request
	if msg.Request.Source != "" {
		request = msg.Request
	}
	source, ok := domain.ParseIngestionSource(string(request.Source))
	if !ok || source != r.job.Source {
		return payloadError(fmt.Sprintf("Invalid ingestion queue payload: source %q does not match job source %q", request.Source, r.job.Source))
	}
	request.Source = source
	r.request = request.Normalize()
	r.metrics.Requested = &domain.RequestedMetrics{JobRequest: r.request, TriggeredByUserID: strconv.FormatInt(userID, 10)}

	connector, err := r.worker.connectors.Connector(source)
	if err != nil {
		return fmt.Errorf("no connector for %s: %w", source, err)
	}
	r.connector = connector
	if r.request.DetectHexFromImage && r.worker.detector == nil {
		return errors.New("hex detection was requested but no detector is configured")
	}
	return nil
}

// pull fetches pages until maxRecords is reached or the connector runs dry.
func (r *jobRun) pull(ctx context.Context) (bool, error) {
	page := r.request.Page
	for r.metrics.Processed < int64(r.request.MaxRecords) {
		if cancelled, err := r.cancelled(ctx); err != nil || cancelled {
			return cancelled, err
		}
		r.metrics.Pipeline = domain.JobPipeline{Stage: stageFetch, Page: page}
		result, err := r.connector.FetchPage(ctx, ports.FetchRequest{
			Source:     r.request.Source,
			Page:       page,
			PageSize:   r.request.PageSize,
			RecentDays: r.request.RecentDays,
			SearchTerm: r.request.SearchTerm,
		})
		if err != nil {
			return false, fmt.Errorf("fetch page %d: %w", page, err)
		}
		r.metrics.Pages++
		r.addConnectorCounters(result.Counters)
		r.log.DebugContext(ctx, "fetched page", "page", page, "records", len(result.Records), "has_more", result.HasMore)

		r.metrics.Pipeline.Stage = stageMaterialize
		for i, record := range result.Records {
			if r.metrics.Processed >= int64(r.request.MaxRecords) {
				break
			}
			if i > 0 && i%cancelCheckEvery == 0 {
				if cancelled, err := r.cancelled(ctx); err != nil || cancelled {
					return cancelled, err
				}
			}
			r.metrics.Processed++
			if err := r.materialize(ctx, record); err != nil {
				return false, err
			}
		}
		if err := r.checkpoint(ctx); err != nil {
			return false, err
		}
		if !result.HasMore || len(result.Records) == 0 {
			break
		}
		page++
	}
	return false, nil
}

func (r *jobRun) materialize(ctx context.Context, record ports.ConnectorRecord) error {
	shade, ok := ShadeFromRecord(string(r.request.Source), record)
	if !ok {
		r.metrics.Skipped++
		r.log.DebugContext(ctx, "skipping incomplete record", "external_id", shade.ExternalID, "brand", shade.Brand, "name", shade.Name)
		return nil
	}
	if r.request.DetectHexFromImage && shade.ImageURL != "" {
		if err := r.detectHex(ctx, &shade); err != nil {
			return err
		}
	}

	saved, outcome, err := r.worker.catalog.UpsertShade(ctx, shade)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", shade.Source, shade.ExternalID, err)
	}
	switch outcome {
	case ports.UpsertInserted:
		r.metrics.Inserted++
	case ports.UpsertUpdated:
		r.metrics.Updated++
	default:
		r.metrics.Skipped++
	}

	if r.request.MaterializeToInventory {
		_, created, err := r.worker.inventory.EnsureInventoryItem(ctx, domain.InventoryItem{
			UserID:    r.userID,
			ShadeID:   saved.ID,
			Source:    string(r.request.Source),
			SourceRef: r.job.ID,
		})
		if err != nil {
			return fmt.Errorf("materialize shade %d: %w", saved.ID, err)
		}
		if created {
			r.metrics.Materialized++
		}
	}
	return nil
}

// detectHex fills shade.Hex from its image. An existing hex, from the record
// or the stored row, is kept unless overwriteDetectedHex is set.
func (r *jobRun) detectHex(ctx context.Context, shade *domain.CatalogShade) error {
	if !r.request.OverwriteDetectedHex {
		existing := shade.Hex
		if existing == "" {
			stored, err := r.worker.catalog.GetShadeBySourceID(ctx, shade.Source, shade.ExternalID)
			if err != nil && !errors.Is(err, ports.ErrNotFound) {
				return err
			}
			existing = stored.Hex
		}
		if existing != "" {
			r.metrics.HexPreserved++
			return nil
		}
	}

	raw, err := r.worker.detector.DetectHex(ctx, ports.ImageInput{URL: shade.ImageURL})
	if err != nil {
		return fmt.Errorf("hex detection for %s: %w", shade.ExternalID, err)
	}
	value, ok := domain.NormalizeHex(raw)
	if !ok {
		r.log.WarnContext(ctx, "hex detector returned an unusable value", "external_id", shade.ExternalID, "value", raw)
		return nil
	}
	shade.Hex = value
	r.metrics.HexDetected++
	return nil
}

func (r *jobRun) addConnectorCounters(counters map[string]int64) {
	if len(counters) == 0 {
		return
	}
	if r.metrics.Connector == nil {
		r.metrics.Connector = make(map[string]int64, len(counters))
	}
	for key, value := range counters {
		r.metrics.Connector[key] += value
	}
}

func (r *jobRun) cancelled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	current, err := r.worker.jobs.GetJob(ctx, r.job.ID)
	if err != nil {
		return false, fmt.Errorf("check cancellation: %w", err)
	}
	return current.Status == domain.JobStatusCancelled, nil
}

// checkpoint persists progress and pending log lines.
func (r *jobRun) checkpoint(ctx context.Context) error {
	update := r.metrics
	update.Logs = r.logs.drain()
	if _, err := r.worker.jobs.MergeMetrics(ctx, r.job.ID, update); err != nil {
		return fmt.Errorf("checkpoint job %s: %w", r.job.ID, err)
	}
	return nil
}

func (r *jobRun) finish(ctx context.Context, status domain.JobStatus, errMsg string) error {
	if status == domain.JobStatusFailed {
		r.metrics.Pipeline.Stage = stageFailed
	}
	update := r.metrics
	update.Logs = r.logs.drain()
	moved, err := r.worker.jobs.Finish(ctx, r.job.ID, status, errMsg, update, r.worker.now())
	if err != nil {
		return fmt.Errorf("finish job %s: %w", r.job.ID, err)
	}
	if !moved {
		r.worker.log.InfoContext(ctx, "job already finished elsewhere", "job_id", r.job.ID, "wanted", status)
		return nil
	}
	observability.RecordJobOutcome(ctx, string(r.job.Source), string(status))
	return nil
}
