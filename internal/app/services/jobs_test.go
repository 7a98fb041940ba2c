package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/app/ports/mocks"
)

func TestRunJobRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	svc := NewJobService(store, store, "")

	_, err := svc.RunJob(context.Background(), testUserID, domain.JobRequest{Source: "sephora"})
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected unknown source, got %v", err)
	}
	if ClassifyJobError(err) != JobErrorUnknownSource {
		t.Fatalf("unexpected classification %s", ClassifyJobError(err))
	}
	jobs, err := svc.ListJobs(context.Background(), 0)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("rejected request must not create a job, got %d", len(jobs))
	}
}

func TestRunJobEnqueuesCloudEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	svc := NewJobService(store, store, "")

	job, err := svc.RunJob(ctx, testUserID, domain.JobRequest{Source: " MakeupAPI ", PageSize: 5000, MaxRecords: 10})
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	if job.Status != domain.JobStatusQueued || job.Source != domain.SourceMakeupAPI {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Request.PageSize != domain.MaxPageSize || job.Request.Page != 1 {
		t.Fatalf("request should be normalized: %+v", job.Request)
	}
	if job.Metrics.Requested == nil || job.Metrics.Requested.TriggeredByUserID != "42" {
		t.Fatalf("metrics should echo the request: %+v", job.Metrics.Requested)
	}

	msg, ok, err := store.Receive(ctx, svc.QueueName(), 0)
	if err != nil || !ok {
		t.Fatalf("expected a queued message, ok=%v err=%v", ok, err)
	}
	if !strings.Contains(string(msg.Body), `"specversion":"1.0"`) {
		t.Fatalf("message should be a cloudevent: %s", msg.Body)
	}
	decoded, err := DecodeJobMessage(msg.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.JobID != job.ID || decoded.UserID != "42" || decoded.Request.Source != domain.SourceMakeupAPI {
		t.Fatalf("unexpected message: %+v", decoded)
	}
}

func TestRunJobMarksJobFailedWhenEnqueueFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	queue := mocks.NewMockQueue(t)
	queue.EXPECT().Enqueue(mock.Anything, DefaultQueueName, mock.Anything).Return(0, errors.New("disk full")).Once()
	svc := NewJobService(store, queue, "")

	if _, err := svc.RunJob(ctx, testUserID, domain.JobRequest{Source: domain.SourceManualFeed}); err == nil {
		t.Fatalf("expected dispatch error")
	}
	jobs, err := svc.ListJobs(ctx, 10)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected the job row to remain, got %d", len(jobs))
	}
	if jobs[0].Status != domain.JobStatusFailed || !strings.HasPrefix(jobs[0].Error, "enqueue failed: disk full") {
		t.Fatalf("unexpected job after failed enqueue: %+v", jobs[0])
	}
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	svc := NewJobService(store, store, "")

	job, err := svc.RunJob(ctx, testUserID, domain.JobRequest{Source: domain.SourceOpenBeautyFacts})
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	cancelled, err := svc.CancelJob(ctx, job.ID, "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.JobStatusCancelled || cancelled.CancelReason != "cancelled by operator" || cancelled.FinishedAt == nil {
		t.Fatalf("unexpected cancelled job: %+v", cancelled)
	}

	if _, err := svc.CancelJob(ctx, job.ID, "again"); !errors.Is(err, ErrJobTerminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if _, err := svc.CancelJob(ctx, "missing", ""); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPurgeQueueLeavesJobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	svc := NewJobService(store, store, "")

	for range 3 {
		if _, err := svc.RunJob(ctx, testUserID, domain.JobRequest{Source: domain.SourceManualFeed}); err != nil {
			t.Fatalf("run job: %v", err)
		}
	}
	stats, err := svc.QueueStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Visible != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	purged, err := svc.PurgeQueue(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged, got %d", purged)
	}
	jobs, err := svc.ListJobs(ctx, 10)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	for _, job := range jobs {
		if job.Status != domain.JobStatusQueued {
			t.Fatalf("purge must not touch job rows: %+v", job)
		}
	}
}

func TestQueueStatsUsesConfiguredQueue(t *testing.T) {
	t.Parallel()

	queue := mocks.NewMockQueue(t)
	queue.EXPECT().Stats(mock.Anything, "custom").Return(ports.QueueStats{Queue: "custom", Total: 7}, nil).Once()
	svc := NewJobService(newTestStore(t), queue, "custom")

	stats, err := svc.QueueStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 7 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
