package domain

import "time"

// MaxJobLogEntries caps metrics.logs; older entries beyond it are dropped.
const MaxJobLogEntries = 500

// JobMetricsVersion is written into every persisted metrics document.
const JobMetricsVersion = 1

// Log levels accepted in job logs.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// JobMetrics is the typed progress document of an ingestion job.
type JobMetrics struct {
	SchemaVersion int               `json:"schemaVersion"`
	Requested     *RequestedMetrics `json:"requested,omitempty"`
	Processed     int64             `json:"processed"`
	Inserted      int64             `json:"inserted"`
	Updated       int64             `json:"updated"`
	Skipped       int64             `json:"skipped"`
	Materialized  int64             `json:"materialized"`
	HexDetected   int64             `json:"hexDetected"`
	HexPreserved  int64             `json:"hexPreserved"`
	Pages         int64             `json:"pages"`
	Connector     map[string]int64  `json:"connector,omitempty"`
	Pipeline      JobPipeline       `json:"pipeline"`
	Logs          []JobLogEntry     `json:"logs"`
	LogsDropped   int64             `json:"logsDropped"`
}

// JobPipeline is the worker's current position.
type JobPipeline struct {
	Stage string `json:"stage,omitempty"`
	Page  int    `json:"page,omitempty"`
}

// JobLogEntry is one structured log line captured for a job.
type JobLogEntry struct {
	Seq     int64             `json:"seq"`
	At      time.Time         `json:"ts"`
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// Merge folds next into m. Counters never decrease and logs are appended by
// sequence, so applying the same update twice is harmless.
func (m JobMetrics) Merge(next JobMetrics) JobMetrics {
	out := m
	out.SchemaVersion = JobMetricsVersion
	if next.Requested != nil {
		out.Requested = next.Requested
	}
	out.Processed = max(m.Processed, next.Processed)
	out.Inserted = max(m.Inserted, next.Inserted)
	out.Updated = max(m.Updated, next.Updated)
	out.Skipped = max(m.Skipped, next.Skipped)
	out.Materialized = max(m.Materialized, next.Materialized)
	out.HexDetected = max(m.HexDetected, next.HexDetected)
	out.HexPreserved = max(m.HexPreserved, next.HexPreserved)
	out.Pages = max(m.Pages, next.Pages)
	out.LogsDropped = max(m.LogsDropped, next.LogsDropped)
	if next.Pipeline.Stage != "" {
		out.Pipeline = next.Pipeline
	}

	if len(m.Connector) > 0 || len(next.Connector) > 0 {
		out.Connector = make(map[string]int64, len(m.Connector)+len(next.Connector))
		for k, v := range m.Connector {
			out.Connector[k] = v
		}
		for k, v := range next.Connector {
			out.Connector[k] = max(out.Connector[k], v)
		}
	}

	var lastSeq int64
	out.Logs = make([]JobLogEntry, 0, len(m.Logs)+len(next.Logs))
	for _, entry := range m.Logs {
		out.Logs = append(out.Logs, entry)
		lastSeq = max(lastSeq, entry.Seq)
	}
	for _, entry := range next.Logs {
		if entry.Seq > lastSeq {
			out.Logs = append(out.Logs, entry)
			lastSeq = entry.Seq
		}
	}
	if overflow := len(out.Logs) - MaxJobLogEntries; overflow > 0 {
		out.Logs = out.Logs[overflow:]
		out.LogsDropped += int64(overflow)
	}
	return out
}
