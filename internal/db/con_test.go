package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fr0stylo/lacquer/internal/db/queries"
)

func TestSQLiteDSNIncludesImmediateTxLock(t *testing.T) {
	dsn := sqliteDSN("data/test", "&cache=shared", "broken")
	if !strings.HasPrefix(dsn, "file:data/test.sqlite?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	for _, want := range []string{"_txlock=immediate", "busy_timeout%285000%29", "journal_mode%28WAL%29", "cache=shared"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected %q in dsn %s", want, dsn)
		}
	}
	if strings.Contains(dsn, "broken") {
		t.Fatalf("expected malformed param to be skipped: %s", dsn)
	}
}

func TestQueryNameReadsSQLCHeader(t *testing.T) {
	cases := map[string]string{
		"-- name: GetCaptureSession :one\nSELECT 1": "GetCaptureSession",
		"  -- name: PurgeQueue :execrows":           "PurgeQueue",
		"SELECT 1":                                  "unknown",
		"-- name:":                                  "unknown",
	}
	for query, want := range cases {
		if got := queryName(query); got != want {
			t.Fatalf("queryName(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestQueryAreaGroupsByTable(t *testing.T) {
	cases := map[string]string{
		"UpdateCaptureSession":      "capture",
		"GetImageAssetByChecksum":   "capture",
		"InsertInventoryItem":       "inventory",
		"SearchCatalogShadesByText": "catalog",
		"FinishIngestionJob":        "ingestion",
		"ClaimNextMessage":          "queue",
		"InsertDeadLetter":          "queue",
		"UpsertUser":                "users",
		"unknown":                   "other",
	}
	for name, want := range cases {
		if got := queryArea(name); got != want {
			t.Fatalf("queryArea(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTrackerCountsFailedQueries(t *testing.T) {
	tracker := newQueryLatencyTracker()
	tracker.observe("ClaimNextMessage", time.Millisecond, nil)
	tracker.observe("ClaimNextMessage", 2*time.Millisecond, errors.New("database is locked (5) (SQLITE_BUSY)"))
	tracker.observe("ClaimNextMessage", time.Millisecond, errors.New("constraint failed"))
	tracker.observe("GetIngestionJob", time.Millisecond, sql.ErrNoRows)

	byName := map[string]QueryLatencyStats{}
	for _, stat := range tracker.snapshot() {
		byName[stat.Name] = stat
	}
	claim := byName["ClaimNextMessage"]
	if claim.Area != "queue" || claim.Count != 3 || claim.Errors != 2 || claim.Busy != 1 {
		t.Fatalf("unexpected claim stats: %+v", claim)
	}
	if job := byName["GetIngestionJob"]; job.Errors != 0 {
		t.Fatalf("missing rows should not count as errors: %+v", job)
	}
}

func TestNewMigratesAndTracksLatency(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "nested", "data", "lacquer"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = database.Close() }()

	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err = database.WithTx(ctx, func(q *queries.Queries) error {
		_, err := q.InsertCatalogShade(ctx, queries.InsertCatalogShadeParams{
			Brand: "Holo Taco", Name: "Rainbow Taco", Source: "manual_feed", ExternalID: "ht-1",
			CreatedAt: now, UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert in tx: %v", err)
	}

	count, err := database.CountCatalogShades(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 shade, got %d", count)
	}

	seen := map[string]bool{}
	for _, stat := range database.QueryLatencyStats() {
		seen[stat.Name] = true
	}
	if !seen["InsertCatalogShade"] || !seen["CountCatalogShades"] {
		t.Fatalf("expected tracked queries from tx and pool, got %#v", seen)
	}
}
