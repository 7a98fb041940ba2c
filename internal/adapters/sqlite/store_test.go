package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "store-test"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(database)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestQueueLeaseLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore(t)

	if _, err := store.Enqueue(ctx, "ingestion", []byte(`{"jobId":"a"}`)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	msg, ok, err := store.Receive(ctx, "ingestion", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("receive: ok=%v err=%v", ok, err)
	}
	if msg.DequeueCount != 1 || string(msg.Body) != `{"jobId":"a"}` {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if _, ok, err := store.Receive(ctx, "ingestion", 30*time.Second); err != nil || ok {
		t.Fatalf("leased message should be invisible: ok=%v err=%v", ok, err)
	}

	*clock = clock.Add(31 * time.Second)
	redelivered, ok, err := store.Receive(ctx, "ingestion", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("receive after lease expiry: ok=%v err=%v", ok, err)
	}
	if redelivered.DequeueCount != 2 {
		t.Fatalf("expected dequeue count 2, got %d", redelivered.DequeueCount)
	}

	if err := store.Delete(ctx, msg); !errors.Is(err, ports.ErrLeaseLost) {
		t.Fatalf("expected lease lost for stale token, got %v", err)
	}
	if err := store.Delete(ctx, redelivered); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stats, err := store.Stats(ctx, "ingestion")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.DeadLetters != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestQueueReleaseAndDeadLetter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore(t)

	if _, err := store.Enqueue(ctx, "ingestion", []byte("body")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	msg, _, err := store.Receive(ctx, "ingestion", time.Minute)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := store.Release(ctx, msg, 5*time.Second); err != nil {
		t.Fatalf("release: %v", err)
	}

	stats, err := store.Stats(ctx, "ingestion")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Visible != 0 || stats.Leased != 0 {
		t.Fatalf("released message should be delayed, got %+v", stats)
	}

	*clock = clock.Add(6 * time.Second)
	msg, ok, err := store.Receive(ctx, "ingestion", time.Minute)
	if err != nil || !ok {
		t.Fatalf("receive after release: ok=%v err=%v", ok, err)
	}
	if err := store.DeadLetter(ctx, msg, "too many deliveries"); err != nil {
		t.Fatalf("dead letter: %v", err)
	}

	stats, err = store.Stats(ctx, "ingestion")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.DeadLetters != 1 {
		t.Fatalf("unexpected stats after dead letter: %+v", stats)
	}

	if _, err := store.Enqueue(ctx, "ingestion", []byte("x")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	purged, err := store.Purge(ctx, "ingestion")
	if err != nil || purged != 1 {
		t.Fatalf("purge: n=%d err=%v", purged, err)
	}
}

func TestJobStoreCancelWinsOverFinish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore(t)

	job, err := store.CreateJob(ctx, domain.IngestionJob{
		ID:          "job-1",
		Source:      domain.SourceManualFeed,
		RequestedBy: 7,
		Request:     domain.JobRequest{Source: domain.SourceManualFeed}.Normalize(),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != domain.JobStatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}

	moved, err := store.MarkRunning(ctx, job.ID, *clock)
	if err != nil || !moved {
		t.Fatalf("mark running: moved=%v err=%v", moved, err)
	}
	if _, err := store.MergeMetrics(ctx, job.ID, domain.JobMetrics{Processed: 3}); err != nil {
		t.Fatalf("merge metrics: %v", err)
	}

	cancelled, err := store.Cancel(ctx, job.ID, "operator stop", *clock)
	if err != nil || !cancelled {
		t.Fatalf("cancel: moved=%v err=%v", cancelled, err)
	}

	moved, err = store.Finish(ctx, job.ID, domain.JobStatusSucceeded, "", domain.JobMetrics{Processed: 5, Inserted: 5}, *clock)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if moved {
		t.Fatalf("finish must not overwrite a cancelled job")
	}

	loaded, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded.Status != domain.JobStatusCancelled || loaded.CancelReason != "operator stop" {
		t.Fatalf("unexpected job: %+v", loaded)
	}
	if loaded.Metrics.Processed != 5 || loaded.Metrics.Inserted != 5 {
		t.Fatalf("late metrics should still merge, got %+v", loaded.Metrics)
	}
	if loaded.StartedAt == nil || loaded.FinishedAt == nil {
		t.Fatalf("expected timestamps, got %+v", loaded)
	}

	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogUpsertOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	shade := domain.CatalogShade{Brand: "Essie", Name: "Ballet Slippers", Source: "manual_feed", ExternalID: "e-1"}
	first, outcome, err := store.UpsertShade(ctx, shade)
	if err != nil || outcome != ports.UpsertInserted {
		t.Fatalf("insert: outcome=%s err=%v", outcome, err)
	}

	if _, outcome, err = store.UpsertShade(ctx, shade); err != nil || outcome != ports.UpsertUnchanged {
		t.Fatalf("repeat: outcome=%s err=%v", outcome, err)
	}

	shade.Hex = "#F4D3D3"
	shade.Brand = ""
	updated, outcome, err := store.UpsertShade(ctx, shade)
	if err != nil || outcome != ports.UpsertUpdated {
		t.Fatalf("update: outcome=%s err=%v", outcome, err)
	}
	if updated.ID != first.ID || updated.Brand != "Essie" || updated.Hex != "#F4D3D3" {
		t.Fatalf("unexpected merged shade: %+v", updated)
	}

	item, created, err := store.EnsureInventoryItem(ctx, domain.InventoryItem{UserID: 1, ShadeID: first.ID, Source: "capture"})
	if err != nil || !created {
		t.Fatalf("ensure inventory: created=%v err=%v", created, err)
	}
	again, created, err := store.EnsureInventoryItem(ctx, domain.InventoryItem{UserID: 1, ShadeID: first.ID, Source: "capture"})
	if err != nil || created || again.ID != item.ID {
		t.Fatalf("second ensure should reuse row: created=%v item=%+v err=%v", created, again, err)
	}
}

func TestCaptureTxVersionAndQuestionInvariants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore(t)

	session := domain.CaptureSession{
		ID:        "2f0b8a5c-95b7-4f6e-9d6f-1b1c2f6f7a10",
		UserID:    1,
		Status:    domain.CaptureStatusProcessing,
		Metadata:  domain.NewSessionMetadata(domain.CaptureHints{}),
		Version:   1,
		CreatedAt: *clock,
		UpdatedAt: *clock,
	}

	err := store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		if err := tx.InsertSession(ctx, session); err != nil {
			return err
		}
		asset := domain.ImageAsset{ID: "asset-1", SessionID: session.ID, Checksum: "abc", StorageRef: "inline://capture/x/1", ByteSize: 3, Data: []byte("abc")}
		if _, err := tx.SaveImageAsset(ctx, asset); err != nil {
			return err
		}
		asset.ID = "asset-2"
		saved, err := tx.SaveImageAsset(ctx, asset)
		if err != nil {
			return err
		}
		if saved.ID != "asset-1" {
			t.Errorf("expected checksum dedupe to asset-1, got %s", saved.ID)
		}

		other := session
		other.ID = "7c1e4d2a-3b5f-4a8e-9c0d-2e3f4a5b6c7d"
		if err := tx.InsertSession(ctx, other); err != nil {
			return err
		}
		asset.ID = "asset-3"
		asset.SessionID = other.ID
		asset.StorageRef = "inline://capture/y/1"
		fresh, err := tx.SaveImageAsset(ctx, asset)
		if err != nil {
			return err
		}
		if fresh.ID != "asset-3" || fresh.StorageRef != "inline://capture/y/1" {
			t.Errorf("same bytes in another session should get their own asset, got %+v", fresh)
		}
		return tx.InsertQuestion(ctx, domain.CaptureQuestion{
			ID:        "q-1",
			SessionID: session.ID,
			Key:       domain.QuestionKeyCaptureFrame,
			Prompt:    "Take another photo",
			Type:      domain.QuestionTypeSingleSelect,
			Options:   []string{domain.DoneAnswer, domain.SkipAnswer},
			CreatedAt: *clock,
		})
	})
	if err != nil {
		t.Fatalf("seed capture: %v", err)
	}

	err = store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		return tx.InsertQuestion(ctx, domain.CaptureQuestion{ID: "q-2", SessionID: session.ID, Key: domain.QuestionKeyBrandShade, Type: domain.QuestionTypeFreeText, CreatedAt: *clock})
	})
	if !errors.Is(err, ports.ErrConcurrentUpdate) {
		t.Fatalf("second open question should be rejected, got %v", err)
	}

	err = store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		current, err := tx.GetSession(ctx, session.ID)
		if err != nil {
			return err
		}
		current.Status = domain.CaptureStatusNeedsQuestion
		updated, err := tx.UpdateSession(ctx, current)
		if err != nil {
			return err
		}
		if updated.Version != 2 {
			t.Errorf("expected version 2, got %d", updated.Version)
		}
		if _, err := tx.UpdateSession(ctx, current); !errors.Is(err, ports.ErrConcurrentUpdate) {
			t.Errorf("stale version should conflict, got %v", err)
		}
		question, err := tx.GetOpenQuestion(ctx, session.ID)
		if err != nil {
			return err
		}
		if len(question.Options) != 2 {
			t.Errorf("unexpected options: %v", question.Options)
		}
		return tx.CloseQuestion(ctx, question.ID, domain.SkipAnswer, *clock)
	})
	if err != nil {
		t.Fatalf("update capture: %v", err)
	}

	err = store.WithinTx(ctx, func(tx ports.CaptureTx) error {
		_, err := tx.GetOpenQuestion(ctx, session.ID)
		return err
	})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected no open question, got %v", err)
	}
}
