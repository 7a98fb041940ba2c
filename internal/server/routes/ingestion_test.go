package routes

import (
	"context"
	"net/http"
	"testing"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

func TestIngestionRoutesRequireAdmin(t *testing.T) {
	anonymous := newRoutesFixture(t, 0)
	if rec := anonymous.do(t, http.MethodGet, "/ingestion/jobs", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	member := newRoutesFixture(t, testUserID)
	for _, target := range []string{"/ingestion/jobs", "/ingestion/queue"} {
		if rec := member.do(t, http.MethodGet, target, nil); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", target, rec.Code)
		}
	}
	rec := member.do(t, http.MethodPost, "/ingestion/jobs", map[string]any{"source": "manual_feed"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on run, got %d", rec.Code)
	}
}

func TestIngestionRoutesJobLifecycle(t *testing.T) {
	f := newRoutesFixture(t, testAdminID)

	rec := f.do(t, http.MethodPost, "/ingestion/jobs", map[string]any{"source": "myspace"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown source should be 400, got %d", rec.Code)
	}
	if got := decodeBody[errorResponse](t, rec); got.Kind != "unknown_source" {
		t.Fatalf("unexpected error kind %q", got.Kind)
	}

	rec = f.do(t, http.MethodPost, "/ingestion/jobs", map[string]any{"source": "manual_feed", "pageSize": 500})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("run job: %d %s", rec.Code, rec.Body.String())
	}
	run := decodeBody[runJobResponse](t, rec)
	if run.JobID == "" || run.Status != domain.JobStatusQueued || run.Queue != testQueue {
		t.Fatalf("unexpected run response: %+v", run)
	}

	rec = f.do(t, http.MethodGet, "/ingestion/jobs/"+run.JobID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job: %d", rec.Code)
	}
	job := decodeBody[domain.IngestionJob](t, rec)
	if job.Request.PageSize != domain.MaxPageSize || job.RequestedBy != testAdminID {
		t.Fatalf("request should be normalized and attributed: %+v", job)
	}

	rec = f.do(t, http.MethodGet, "/ingestion/jobs?limit=5", nil)
	list := decodeBody[struct {
		Jobs []domain.IngestionJob `json:"jobs"`
	}](t, rec)
	if rec.Code != http.StatusOK || len(list.Jobs) != 1 {
		t.Fatalf("expected one listed job, got %d %+v", rec.Code, list)
	}

	rec = f.do(t, http.MethodGet, "/ingestion/queue", nil)
	if stats := decodeBody[ports.QueueStats](t, rec); rec.Code != http.StatusOK || stats.Total != 1 {
		t.Fatalf("expected one queued message, got %d %+v", rec.Code, stats)
	}

	rec = f.do(t, http.MethodPost, "/ingestion/jobs/"+run.JobID+"/cancel", map[string]string{"reason": "wrong feed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}
	if cancelled := decodeBody[domain.IngestionJob](t, rec); cancelled.Status != domain.JobStatusCancelled || cancelled.CancelReason != "wrong feed" {
		t.Fatalf("unexpected cancelled job: %+v", cancelled)
	}
	rec = f.do(t, http.MethodPost, "/ingestion/jobs/"+run.JobID+"/cancel", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("cancelling a terminal job should conflict, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/ingestion/queue", nil)
	purged := decodeBody[struct {
		Purged int64 `json:"purged"`
	}](t, rec)
	if rec.Code != http.StatusOK || purged.Purged != 1 {
		t.Fatalf("expected one purged message, got %d %+v", rec.Code, purged)
	}
	if job, err := f.store.GetJob(context.Background(), run.JobID); err != nil || job.Status != domain.JobStatusCancelled {
		t.Fatalf("purge must leave the job row alone: %+v %v", job, err)
	}
}

func TestIngestionRoutesUnknownJob(t *testing.T) {
	f := newRoutesFixture(t, testAdminID)

	rec := f.do(t, http.MethodGet, "/ingestion/jobs/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/ingestion/jobs/does-not-exist/cancel", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on cancel, got %d", rec.Code)
	}
}
