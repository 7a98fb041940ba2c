package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

const (
	// DefaultQueueName is the queue ingestion jobs are dispatched on.
	DefaultQueueName = "ingestion-jobs"

	defaultCancelReason = "cancelled by operator"
	defaultJobListLimit = 50
)

// JobService validates run requests, dispatches them to the queue and
// manages the job lifecycle from the operator side.
type JobService struct {
	jobs      ports.IngestionJobStore
	queue     ports.Queue
	queueName string

	now   func() time.Time
	newID func() string
}

// NewJobService constructs a job service.
func NewJobService(jobs ports.IngestionJobStore, queue ports.Queue, queueName string) *JobService {
	if strings.TrimSpace(queueName) == "" {
		queueName = DefaultQueueName
	}
	return &JobService{
		jobs:      jobs,
		queue:     queue,
		queueName: queueName,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// QueueName returns the dispatch queue.
func (s *JobService) QueueName() string {
	return s.queueName
}

// RunJob creates a queued job for request and enqueues its message.
func (s *JobService) RunJob(ctx context.Context, userID int64, request domain.JobRequest) (domain.IngestionJob, error) {
	source, ok := domain.ParseIngestionSource(string(request.Source))
	if !ok {
		return domain.IngestionJob{}, fmt.Errorf("%w: %q", ErrUnknownSource, request.Source)
	}
	if userID <= 0 {
		return domain.IngestionJob{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	request.Source = source
	request = request.Normalize()

	now := s.now()
	triggeredBy := strconv.FormatInt(userID, 10)
	requested := domain.RequestedMetrics{JobRequest: request, TriggeredByUserID: triggeredBy}
	job, err := s.jobs.CreateJob(ctx, domain.IngestionJob{
		ID:          s.newID(),
		Source:      source,
		JobType:     domain.JobTypeConnectorPull,
		RequestedBy: userID,
		Request:     request,
		Metrics: domain.JobMetrics{
			SchemaVersion: domain.JobMetricsVersion,
			Requested:     &requested,
			Pipeline:      domain.JobPipeline{Stage: "queued"},
		},
		CreatedAt: now,
	})
	if err != nil {
		return domain.IngestionJob{}, fmt.Errorf("create job: %w", err)
	}

	body, err := EncodeJobMessage(domain.IngestionQueueMessage{
		JobID:            job.ID,
		UserID:           triggeredBy,
		QueuedAt:         now.Format(time.RFC3339Nano),
		Request:          request,
		RequestedMetrics: requested,
	}, now)
	if err == nil {
		_, err = s.queue.Enqueue(ctx, s.queueName, body)
	}
	if err != nil {
		if _, finishErr := s.jobs.Finish(ctx, job.ID, domain.JobStatusFailed, "enqueue failed: "+err.Error(), domain.JobMetrics{}, s.now()); finishErr != nil {
			err = errors.Join(err, finishErr)
		}
		return domain.IngestionJob{}, fmt.Errorf("dispatch job %s: %w", job.ID, err)
	}
	return job, nil
}

// ListJobs returns the most recent jobs first.
func (s *JobService) ListJobs(ctx context.Context, limit int) ([]domain.IngestionJob, error) {
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	return s.jobs.ListJobs(ctx, limit)
}

// GetJob returns one job.
func (s *JobService) GetJob(ctx context.Context, id string) (domain.IngestionJob, error) {
	job, err := s.jobs.GetJob(ctx, strings.TrimSpace(id))
	if errors.Is(err, ports.ErrNotFound) {
		return domain.IngestionJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, err
}

// CancelJob stops a queued or running job. A worker mid-flight notices at
// its next checkpoint.
func (s *JobService) CancelJob(ctx context.Context, id, reason string) (domain.IngestionJob, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return domain.IngestionJob{}, err
	}
	if job.Status.Terminal() {
		return domain.IngestionJob{}, fmt.Errorf("%w: job %s is %s", ErrJobTerminal, job.ID, job.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	moved, err := s.jobs.Cancel(ctx, job.ID, reason, s.now())
	if err != nil {
		return domain.IngestionJob{}, err
	}
	current, err := s.GetJob(ctx, job.ID)
	if err != nil {
		return domain.IngestionJob{}, err
	}
	if !moved {
		return domain.IngestionJob{}, fmt.Errorf("%w: job %s is %s", ErrJobTerminal, current.ID, current.Status)
	}
	return current, nil
}

// PurgeQueue drops every pending message. Job rows are left as they are.
func (s *JobService) PurgeQueue(ctx context.Context) (int64, error) {
	return s.queue.Purge(ctx, s.queueName)
}

// QueueStats summarizes the dispatch queue.
func (s *JobService) QueueStats(ctx context.Context) (ports.QueueStats, error) {
	return s.queue.Stats(ctx, s.queueName)
}
