package db

import (
	"context"
	"log/slog"
	"time"
)

// QueryLatencyStats returns current per-query latency distribution samples.
func (c *Database) QueryLatencyStats() []QueryLatencyStats {
	if c == nil || c.tracker == nil {
		return nil
	}
	return c.tracker.snapshot()
}

// LogLatencyStats periodically logs the slowest queries until ctx is done.
func (c *Database) LogLatencyStats(ctx context.Context, log *slog.Logger, interval time.Duration, top int) {
	if interval <= 0 {
		interval = time.Minute
	}
	if top <= 0 {
		top = 5
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := c.QueryLatencyStats()
			if len(stats) > top {
				stats = stats[:top]
			}
			for _, stat := range stats {
				log.Info("db_query_latency",
					"query", stat.Name,
					"area", stat.Area,
					"count", stat.Count,
					"errors", stat.Errors,
					"busy", stat.Busy,
					"p50_ms", stat.P50.Milliseconds(),
					"p95_ms", stat.P95.Milliseconds(),
					"max_ms", stat.Max.Milliseconds(),
				)
			}
		}
	}
}
