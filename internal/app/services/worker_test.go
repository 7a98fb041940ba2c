package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/app/ports/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorker(store *sqlite.Store, registry ports.ConnectorRegistry, detector ports.HexDetector) *Worker {
	return NewWorker(WorkerDeps{
		Jobs:        store,
		Catalog:     store,
		Inventory:   store,
		Connectors:  registry,
		HexDetector: detector,
		Logger:      discardLogger(),
	})
}

// dispatchJob runs request through JobService and leases the resulting message.
func dispatchJob(t *testing.T, store *sqlite.Store, request domain.JobRequest) (domain.IngestionJob, []byte) {
	t.Helper()

	ctx := context.Background()
	job, err := NewJobService(store, store, "").RunJob(ctx, testUserID, request)
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	msg, ok, err := store.Receive(ctx, DefaultQueueName, time.Minute)
	if err != nil || !ok {
		t.Fatalf("receive: ok=%v err=%v", ok, err)
	}
	return job, msg.Body
}

func loadJob(t *testing.T, store *sqlite.Store, id string) domain.IngestionJob {
	t.Helper()

	job, err := store.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	return job
}

func pageFor(n int) interface{} {
	return mock.MatchedBy(func(req ports.FetchRequest) bool { return req.Page == n })
}

func TestWorkerRejectsNonNumericUserID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	job, _ := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceMakeupAPI})
	body, err := EncodeJobMessage(domain.IngestionQueueMessage{JobID: job.ID, UserID: "abc", Request: job.Request}, time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	worker := newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil)
	err = worker.Handle(context.Background(), body)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}

	failed := loadJob(t, store, job.ID)
	if failed.Status != domain.JobStatusFailed || failed.Error != InvalidUserIDMessage {
		t.Fatalf("unexpected job: status=%s error=%q", failed.Status, failed.Error)
	}
	if failed.Metrics.Pipeline.Stage != stageFailed || len(failed.Metrics.Logs) == 0 {
		t.Fatalf("failure should be checkpointed with logs: %+v", failed.Metrics)
	}
}

func TestWorkerFailsJobWhenRequestDoesNotDecode(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	job, _ := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceMakeupAPI})
	body := []byte(`{"jobId":"` + job.ID + `","userId":"abc","request":{"source":"makeupapi","page":"one"}}`)

	worker := newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil)
	err := worker.Handle(context.Background(), body)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}

	failed := loadJob(t, store, job.ID)
	if failed.Status != domain.JobStatusFailed {
		t.Fatalf("expected failed job, got %s", failed.Status)
	}
	if !strings.Contains(failed.Error, ErrInvalidPayload.Error()) || failed.FinishedAt == nil {
		t.Fatalf("decode failure should be recorded on the job: error=%q finished=%v", failed.Error, failed.FinishedAt)
	}
	if failed.Metrics.Pipeline.Stage != stageFailed || len(failed.Metrics.Logs) == 0 {
		t.Fatalf("failure should be checkpointed with logs: %+v", failed.Metrics)
	}

	// Redelivery of the same body leaves the failed row alone.
	if err := worker.Handle(context.Background(), body); err != nil {
		t.Fatalf("redelivery should short-circuit, got %v", err)
	}
}

func TestWorkerPullsPagesAndMaterializes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	job, body := dispatchJob(t, store, domain.JobRequest{
		Source: domain.SourceMakeupAPI, PageSize: 3, MaxRecords: 10, MaterializeToInventory: true,
	})

	connector := mocks.NewMockConnector(t)
	connector.EXPECT().FetchPage(mock.Anything, pageFor(1)).Return(ports.FetchPage{
		Records: []ports.ConnectorRecord{
			{ExternalID: "m-1", Brand: "OPI", Name: "Big Apple Red", Hex: "b0152b"},
			{ExternalID: "m-2", Brand: "Essie", Name: "Ballet Slippers", GTIN: "0-1234-5"},
			{ExternalID: "m-3", Name: "No Brand"},
		},
		HasMore:  true,
		Counters: map[string]int64{"http_requests": 1},
	}, nil).Once()
	connector.EXPECT().FetchPage(mock.Anything, pageFor(2)).Return(ports.FetchPage{
		Records:  []ports.ConnectorRecord{{Brand: "Zoya", Name: "Purity", SKU: "ZP001"}},
		Counters: map[string]int64{"http_requests": 1},
	}, nil).Once()
	registry := mocks.NewMockConnectorRegistry(t)
	registry.EXPECT().Connector(domain.SourceMakeupAPI).Return(connector, nil).Once()

	if err := newTestWorker(store, registry, nil).Handle(ctx, body); err != nil {
		t.Fatalf("handle: %v", err)
	}

	done := loadJob(t, store, job.ID)
	if done.Status != domain.JobStatusSucceeded || done.StartedAt == nil || done.FinishedAt == nil {
		t.Fatalf("unexpected job: %+v", done)
	}
	m := done.Metrics
	if m.Processed != 4 || m.Inserted != 3 || m.Skipped != 1 || m.Materialized != 3 || m.Pages != 2 {
		t.Fatalf("unexpected counters: %+v", m)
	}
	if m.Connector["http_requests"] != 2 || m.Pipeline.Stage != stageDone {
		t.Fatalf("unexpected connector metrics: %+v", m)
	}
	for i := 1; i < len(m.Logs); i++ {
		if m.Logs[i].Seq <= m.Logs[i-1].Seq {
			t.Fatalf("logs out of order: %+v", m.Logs)
		}
	}

	shade, err := store.GetShadeBySourceID(ctx, string(domain.SourceMakeupAPI), "m-1")
	if err != nil {
		t.Fatalf("load shade: %v", err)
	}
	if shade.Hex != "#B0152B" {
		t.Fatalf("hex should be normalized, got %q", shade.Hex)
	}
	if _, err := store.GetShadeBySourceID(ctx, string(domain.SourceMakeupAPI), "ZP001"); err != nil {
		t.Fatalf("sku should stand in for a missing external id: %v", err)
	}
	if inventoryCount(t, store) != 3 {
		t.Fatalf("expected 3 inventory rows")
	}

	// Redelivery of a finished job is a no-op.
	if err := newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil).Handle(ctx, body); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
}

func TestWorkerRecordsConnectorFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	job, body := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceOpenBeautyFacts})

	connector := mocks.NewMockConnector(t)
	connector.EXPECT().FetchPage(mock.Anything, mock.Anything).Return(ports.FetchPage{}, errors.New("upstream 503")).Once()
	registry := mocks.NewMockConnectorRegistry(t)
	registry.EXPECT().Connector(domain.SourceOpenBeautyFacts).Return(connector, nil).Once()

	if err := newTestWorker(store, registry, nil).Handle(context.Background(), body); err != nil {
		t.Fatalf("connector failures are recorded, not retried: %v", err)
	}
	failed := loadJob(t, store, job.ID)
	if failed.Status != domain.JobStatusFailed || !strings.Contains(failed.Error, "upstream 503") {
		t.Fatalf("unexpected job: status=%s error=%q", failed.Status, failed.Error)
	}
}

func TestWorkerFailsJobWithoutConnector(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	job, body := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceShopifyStorefront})

	registry := mocks.NewMockConnectorRegistry(t)
	registry.EXPECT().Connector(domain.SourceShopifyStorefront).Return(nil, errors.New("not configured")).Once()

	if err := newTestWorker(store, registry, nil).Handle(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := loadJob(t, store, job.ID); got.Status != domain.JobStatusFailed || got.StartedAt != nil {
		t.Fatalf("job should fail before running: %+v", got)
	}
}

func TestWorkerSkipsCancelledJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	job, body := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceManualFeed})
	if _, err := store.Cancel(ctx, job.ID, "stop", time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil).Handle(ctx, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := loadJob(t, store, job.ID); got.Status != domain.JobStatusCancelled {
		t.Fatalf("cancelled job must stay cancelled, got %s", got.Status)
	}
}

func TestWorkerStopsWhenCancelledMidRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	job, body := dispatchJob(t, store, domain.JobRequest{Source: domain.SourceManualFeed, PageSize: 1, MaxRecords: 5})

	connector := mocks.NewMockConnector(t)
	connector.EXPECT().FetchPage(mock.Anything, pageFor(1)).
		RunAndReturn(func(ctx context.Context, _ ports.FetchRequest) (ports.FetchPage, error) {
			if _, err := store.Cancel(ctx, job.ID, "operator", time.Now()); err != nil {
				return ports.FetchPage{}, err
			}
			return ports.FetchPage{Records: []ports.ConnectorRecord{{ExternalID: "f-1", Brand: "OPI", Name: "Malaga Wine"}}, HasMore: true}, nil
		}).Once()
	registry := mocks.NewMockConnectorRegistry(t)
	registry.EXPECT().Connector(domain.SourceManualFeed).Return(connector, nil).Once()

	if err := newTestWorker(store, registry, nil).Handle(ctx, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := loadJob(t, store, job.ID)
	if got.Status != domain.JobStatusCancelled || got.CancelReason != "operator" {
		t.Fatalf("cancellation should win: %+v", got)
	}
	if got.Metrics.Processed != 1 || got.Metrics.Pipeline.Stage != stageCancelled {
		t.Fatalf("progress up to cancellation should be kept: %+v", got.Metrics)
	}
}

func TestWorkerHexDetectionPreservesExistingColor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	seedShade(t, store, domain.CatalogShade{
		Source: string(domain.SourceMakeupAPI), ExternalID: "m-1", Brand: "OPI", Name: "Big Apple Red", Hex: "#111111",
	})
	record := ports.ConnectorRecord{ExternalID: "m-1", Brand: "OPI", Name: "Big Apple Red", ImageURL: "https://cdn.example/opi.png"}

	run := func(overwrite bool, detector *mocks.MockHexDetector) domain.IngestionJob {
		job, body := dispatchJob(t, store, domain.JobRequest{
			Source: domain.SourceMakeupAPI, DetectHexFromImage: true, OverwriteDetectedHex: overwrite,
		})
		connector := mocks.NewMockConnector(t)
		connector.EXPECT().FetchPage(mock.Anything, mock.Anything).Return(ports.FetchPage{Records: []ports.ConnectorRecord{record}}, nil).Once()
		registry := mocks.NewMockConnectorRegistry(t)
		registry.EXPECT().Connector(domain.SourceMakeupAPI).Return(connector, nil).Once()
		if err := newTestWorker(store, registry, detector).Handle(ctx, body); err != nil {
			t.Fatalf("handle: %v", err)
		}
		return loadJob(t, store, job.ID)
	}

	preserved := run(false, mocks.NewMockHexDetector(t))
	if preserved.Metrics.HexPreserved != 1 || preserved.Metrics.HexDetected != 0 {
		t.Fatalf("stored hex should be preserved: %+v", preserved.Metrics)
	}

	detector := mocks.NewMockHexDetector(t)
	detector.EXPECT().DetectHex(mock.Anything, ports.ImageInput{URL: record.ImageURL}).Return("#222222", nil).Once()
	overwritten := run(true, detector)
	if overwritten.Metrics.HexDetected != 1 || overwritten.Metrics.Updated != 1 {
		t.Fatalf("overwrite should detect and update: %+v", overwritten.Metrics)
	}
	shade, err := store.GetShadeBySourceID(ctx, string(domain.SourceMakeupAPI), "m-1")
	if err != nil {
		t.Fatalf("load shade: %v", err)
	}
	if shade.Hex != "#222222" {
		t.Fatalf("expected detected hex, got %q", shade.Hex)
	}
}

func TestWorkerRejectsUnknownJob(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	body, err := EncodeJobMessage(domain.IngestionQueueMessage{
		JobID: "missing", UserID: "1", Request: domain.JobRequest{Source: domain.SourceManualFeed},
	}, time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	err = newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil).Handle(context.Background(), body)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
	if err := newTestWorker(store, mocks.NewMockConnectorRegistry(t), nil).Handle(context.Background(), []byte("not json")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload for garbage, got %v", err)
	}
}
