package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fr0stylo/lacquer/internal/db/queries"
	"github.com/fr0stylo/lacquer/internal/observability"
)

const (
	maxSamplesPerQuery = 512
	sqliteBusyCode     = 5
)

// QueryLatencyStats summarizes the recent samples of one named query.
type QueryLatencyStats struct {
	Name  string
	Area  string
	Count int
	// Errors and Busy count failed calls since start; Busy is the subset that
	// hit a locked database.
	Errors int
	Busy   int
	P50    time.Duration
	P95    time.Duration
	Max    time.Duration
}

type querySamples struct {
	durations []time.Duration
	errors    int
	busy      int
}

type queryLatencyTracker struct {
	mu      sync.Mutex
	samples map[string]*querySamples
}

func newQueryLatencyTracker() *queryLatencyTracker {
	return &queryLatencyTracker{samples: make(map[string]*querySamples)}
}

func (t *queryLatencyTracker) observe(name string, duration time.Duration, err error) {
	if t == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.samples[name]
	if entry == nil {
		entry = &querySamples{}
		t.samples[name] = entry
	}
	entry.durations = append(entry.durations, duration)
	if len(entry.durations) > maxSamplesPerQuery {
		entry.durations = entry.durations[len(entry.durations)-maxSamplesPerQuery:]
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		entry.errors++
		if isBusy(err) {
			entry.busy++
		}
	}
}

func (t *queryLatencyTracker) snapshot() []QueryLatencyStats {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make([]QueryLatencyStats, 0, len(t.samples))
	for name, entry := range t.samples {
		if len(entry.durations) == 0 {
			continue
		}
		sorted := make([]time.Duration, len(entry.durations))
		copy(sorted, entry.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		stats = append(stats, QueryLatencyStats{
			Name:   name,
			Area:   queryArea(name),
			Count:  len(sorted),
			Errors: entry.errors,
			Busy:   entry.busy,
			P50:    sorted[(len(sorted)-1)/2],
			P95:    sorted[int(float64(len(sorted)-1)*0.95)],
			Max:    sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].P95 == stats[j].P95 {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].P95 > stats[j].P95
	})

	return stats
}

type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, queryArea(name), "exec")
	defer span.End()

	start := time.Now()
	result, err := d.inner.ExecContext(ctx, query, args...)
	d.tracker.observe(name, time.Since(start), err)
	span.RecordError(err)
	return result, err
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, queryArea(name), "prepare")
	defer span.End()

	start := time.Now()
	stmt, err := d.inner.PrepareContext(ctx, query)
	d.tracker.observe(name, time.Since(start), err)
	span.RecordError(err)
	return stmt, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, queryArea(name), "query")
	defer span.End()

	start := time.Now()
	rows, err := d.inner.QueryContext(ctx, query, args...)
	d.tracker.observe(name, time.Since(start), err)
	span.RecordError(err)
	return rows, err
}

func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, queryArea(name), "query_row")
	start := time.Now()
	row := d.inner.QueryRowContext(ctx, query, args...)
	// Row errors surface at Scan, after the span has ended.
	d.tracker.observe(name, time.Since(start), nil)
	span.End()
	return row
}

// queryName reads the sqlc "-- name: X :kind" header off a generated query.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return "unknown"
	}
	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return "unknown"
	}
	return parts[0]
}

// queryArea groups a sqlc query by the lacquer tables it touches.
func queryArea(name string) string {
	switch {
	case strings.Contains(name, "Capture"), strings.Contains(name, "ImageAsset"):
		return "capture"
	case strings.Contains(name, "Inventory"):
		return "inventory"
	case strings.Contains(name, "Catalog"):
		return "catalog"
	case strings.Contains(name, "IngestionJob"):
		return "ingestion"
	case strings.Contains(name, "Message"), strings.Contains(name, "Queue"), strings.Contains(name, "DeadLetter"):
		return "queue"
	case strings.Contains(name, "User"):
		return "users"
	default:
		return "other"
	}
}

func isBusy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
