package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db/queries"
)

const maxListJobs = 200

func (s *Store) CreateJob(ctx context.Context, job domain.IngestionJob) (domain.IngestionJob, error) {
	request, err := json.Marshal(job.Request)
	if err != nil {
		return domain.IngestionJob{}, fmt.Errorf("encode job request: %w", err)
	}
	job.Metrics.SchemaVersion = domain.JobMetricsVersion
	if job.Metrics.Logs == nil {
		job.Metrics.Logs = []domain.JobLogEntry{}
	}
	metrics, err := json.Marshal(job.Metrics)
	if err != nil {
		return domain.IngestionJob{}, fmt.Errorf("encode job metrics: %w", err)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	job.UpdatedAt = job.CreatedAt
	job.Status = domain.JobStatusQueued
	if job.JobType == "" {
		job.JobType = domain.JobTypeConnectorPull
	}

	err = retryOnBusy(ctx, func() error {
		return s.db.InsertIngestionJob(ctx, queries.InsertIngestionJobParams{
			ID:          job.ID,
			Source:      string(job.Source),
			JobType:     job.JobType,
			RequestedBy: job.RequestedBy,
			Request:     string(request),
			Metrics:     string(metrics),
			CreatedAt:   formatTime(job.CreatedAt),
			UpdatedAt:   formatTime(job.UpdatedAt),
		})
	})
	if err != nil {
		return domain.IngestionJob{}, fmt.Errorf("insert ingestion job: %w", err)
	}
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (domain.IngestionJob, error) {
	row, err := s.db.GetIngestionJob(ctx, id)
	if err != nil {
		return domain.IngestionJob{}, mapNotFound(err, "ingestion job %s", id)
	}
	return jobFromRow(row)
}

func (s *Store) ListJobs(ctx context.Context, limit int) ([]domain.IngestionJob, error) {
	if limit <= 0 || limit > maxListJobs {
		limit = maxListJobs
	}
	rows, err := s.db.ListIngestionJobs(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list ingestion jobs: %w", err)
	}
	out := make([]domain.IngestionJob, 0, len(rows))
	for _, row := range rows {
		job, err := jobFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *Store) MarkRunning(ctx context.Context, id string, at time.Time) (bool, error) {
	var rows int64
	err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.MarkIngestionJobRunning(ctx, queries.MarkIngestionJobRunningParams{
			StartedAt: nullTime(at),
			ID:        id,
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("mark job %s running: %w", id, err)
	}
	return rows > 0, nil
}

// MergeMetrics folds metrics into the stored document and returns the result.
func (s *Store) MergeMetrics(ctx context.Context, id string, metrics domain.JobMetrics) (domain.JobMetrics, error) {
	var merged domain.JobMetrics
	err := retryOnBusy(ctx, func() error {
		return s.db.WithTx(ctx, func(q *queries.Queries) error {
			current, err := loadJobMetrics(ctx, q, id)
			if err != nil {
				return err
			}
			merged = current.Merge(metrics)
			return storeJobMetrics(ctx, q, id, merged, s.now())
		})
	})
	if err != nil {
		return domain.JobMetrics{}, err
	}
	return merged, nil
}

// Finish moves a non-terminal job to status. Metrics are merged even when
// the job already reached a terminal state, so late progress is not lost.
func (s *Store) Finish(ctx context.Context, id string, status domain.JobStatus, errMsg string, metrics domain.JobMetrics, at time.Time) (bool, error) {
	var moved bool
	err := retryOnBusy(ctx, func() error {
		return s.db.WithTx(ctx, func(q *queries.Queries) error {
			current, err := loadJobMetrics(ctx, q, id)
			if err != nil {
				return err
			}
			merged := current.Merge(metrics)
			encoded, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("encode job metrics: %w", err)
			}
			rows, err := q.FinishIngestionJob(ctx, queries.FinishIngestionJobParams{
				Status:     string(status),
				Error:      errMsg,
				Metrics:    string(encoded),
				FinishedAt: nullTime(at),
				ID:         id,
			})
			if err != nil {
				return fmt.Errorf("finish job %s: %w", id, err)
			}
			moved = rows > 0
			if moved {
				return nil
			}
			return storeJobMetrics(ctx, q, id, merged, at)
		})
	})
	return moved, err
}

func (s *Store) Cancel(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	var rows int64
	err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.CancelIngestionJob(ctx, queries.CancelIngestionJobParams{
			CancelReason: reason,
			FinishedAt:   nullTime(at),
			ID:           id,
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("cancel job %s: %w", id, err)
	}
	return rows > 0, nil
}

func loadJobMetrics(ctx context.Context, q *queries.Queries, id string) (domain.JobMetrics, error) {
	row, err := q.GetIngestionJob(ctx, id)
	if err != nil {
		return domain.JobMetrics{}, mapNotFound(err, "ingestion job %s", id)
	}
	return decodeJobMetrics(row.ID, row.Metrics)
}

func storeJobMetrics(ctx context.Context, q *queries.Queries, id string, metrics domain.JobMetrics, at time.Time) error {
	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode job metrics: %w", err)
	}
	return q.UpdateIngestionJobMetrics(ctx, queries.UpdateIngestionJobMetricsParams{
		Metrics:   string(encoded),
		UpdatedAt: formatTime(at),
		ID:        id,
	})
}

func decodeJobMetrics(id, raw string) (domain.JobMetrics, error) {
	var metrics domain.JobMetrics
	if raw == "" {
		return metrics, nil
	}
	if err := json.Unmarshal([]byte(raw), &metrics); err != nil {
		return domain.JobMetrics{}, fmt.Errorf("decode metrics of job %s: %w", id, err)
	}
	return metrics, nil
}

func jobFromRow(row queries.IngestionJob) (domain.IngestionJob, error) {
	var request domain.JobRequest
	if err := json.Unmarshal([]byte(row.Request), &request); err != nil {
		return domain.IngestionJob{}, fmt.Errorf("decode request of job %s: %w", row.ID, err)
	}
	metrics, err := decodeJobMetrics(row.ID, row.Metrics)
	if err != nil {
		return domain.IngestionJob{}, err
	}
	return domain.IngestionJob{
		ID:           row.ID,
		Source:       domain.IngestionSource(row.Source),
		JobType:      row.JobType,
		Status:       domain.JobStatus(row.Status),
		RequestedBy:  row.RequestedBy,
		Request:      request,
		Metrics:      metrics,
		Error:        row.Error,
		CancelReason: row.CancelReason,
		CreatedAt:    parseTime(row.CreatedAt),
		StartedAt:    parseNullTime(row.StartedAt),
		FinishedAt:   parseNullTime(row.FinishedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
	}, nil
}

var _ ports.IngestionJobStore = (*Store)(nil)
