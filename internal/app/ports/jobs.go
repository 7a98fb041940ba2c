package ports

import (
	"context"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// IngestionJobStore persists ingestion jobs. Status changes are conditional
// on the job not being terminal; the bool results report whether a row moved.
type IngestionJobStore interface {
	CreateJob(ctx context.Context, job domain.IngestionJob) (domain.IngestionJob, error)
	GetJob(ctx context.Context, id string) (domain.IngestionJob, error)
	ListJobs(ctx context.Context, limit int) ([]domain.IngestionJob, error)
	MarkRunning(ctx context.Context, id string, at time.Time) (bool, error)
	MergeMetrics(ctx context.Context, id string, metrics domain.JobMetrics) (domain.JobMetrics, error)
	Finish(ctx context.Context, id string, status domain.JobStatus, errMsg string, metrics domain.JobMetrics, at time.Time) (bool, error)
	Cancel(ctx context.Context, id, reason string, at time.Time) (bool, error)
}

// QueueMessage is one leased delivery.
type QueueMessage struct {
	ID           int64
	Queue        string
	Body         []byte
	LeaseToken   string
	DequeueCount int
	EnqueuedAt   time.Time
}

// QueueStats summarizes a queue.
type QueueStats struct {
	Queue       string `json:"queue"`
	Total       int64  `json:"total"`
	Visible     int64  `json:"visible"`
	Leased      int64  `json:"leased"`
	DeadLetters int64  `json:"deadLetters"`
}

// Queue is an at-least-once message queue with visibility leases.
type Queue interface {
	Enqueue(ctx context.Context, queue string, body []byte) (int64, error)
	// Receive leases the next visible message. ok is false when the queue is empty.
	Receive(ctx context.Context, queue string, visibility time.Duration) (msg QueueMessage, ok bool, err error)
	Delete(ctx context.Context, msg QueueMessage) error
	Release(ctx context.Context, msg QueueMessage, delay time.Duration) error
	DeadLetter(ctx context.Context, msg QueueMessage, reason string) error
	Purge(ctx context.Context, queue string) (int64, error)
	Stats(ctx context.Context, queue string) (QueueStats, error)
}
