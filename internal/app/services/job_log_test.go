package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

func TestJobLoggerCapturesStructuredRecords(t *testing.T) {
	t.Parallel()

	logs := &jobLog{}
	logger := newJobLogger(discardLogger(), logs)

	logger.DebugContext(context.Background(), "fetched page", "page", 2)
	logger.With("source", "makeupapi").WithGroup("counts").Info("ingestion finished", "inserted", 3)
	logger.Warn("slow connector", slog.Group("http", slog.Int("status", 429)))

	entries := logs.drain()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[2].Seq != 3 {
		t.Fatalf("sequence should increase from 1: %+v", entries)
	}
	if entries[0].Level != domain.LogLevelDebug || entries[0].Attrs["page"] != "2" {
		t.Fatalf("unexpected debug entry: %+v", entries[0])
	}
	if entries[1].Attrs["source"] != "makeupapi" || entries[1].Attrs["counts.inserted"] != "3" {
		t.Fatalf("attrs and groups should be flattened: %+v", entries[1].Attrs)
	}
	if entries[2].Level != domain.LogLevelWarn || entries[2].Attrs["http.status"] != "429" {
		t.Fatalf("unexpected warn entry: %+v", entries[2])
	}

	if len(logs.drain()) != 0 {
		t.Fatalf("drain should empty the buffer")
	}
	logger.Error("boom")
	if next := logs.drain(); len(next) != 1 || next[0].Seq != 4 || next[0].Level != domain.LogLevelError {
		t.Fatalf("sequence should continue after drain: %+v", next)
	}
}
