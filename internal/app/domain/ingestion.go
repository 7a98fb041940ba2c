package domain

import (
	"sort"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	// JobStatusQueued is waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning is being processed; redelivery may see it again.
	JobStatusRunning JobStatus = "running"
	// JobStatusSucceeded finished pulling every requested record.
	JobStatusSucceeded JobStatus = "succeeded"
	// JobStatusFailed stopped on an error recorded in the job row.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled was stopped by an operator.
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job will never change status again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// IngestionSource is the closed set of connectors a job may run.
type IngestionSource string

const (
	SourceOpenBeautyFacts   IngestionSource = "openbeautyfacts"
	SourceMakeupAPI         IngestionSource = "makeupapi"
	SourceShopifyStorefront IngestionSource = "shopify_storefront"
	SourceManualFeed        IngestionSource = "manual_feed"
)

var knownSources = map[IngestionSource]struct{}{
	SourceOpenBeautyFacts:   {},
	SourceMakeupAPI:         {},
	SourceShopifyStorefront: {},
	SourceManualFeed:        {},
}

// ParseIngestionSource validates a source against the allow-list.
func ParseIngestionSource(raw string) (IngestionSource, bool) {
	source := IngestionSource(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownSources[source]
	return source, ok
}

// KnownSources lists the allow-list in stable order.
func KnownSources() []IngestionSource {
	out := make([]IngestionSource, 0, len(knownSources))
	for source := range knownSources {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// JobTypeConnectorPull is the only job type the worker runs.
const JobTypeConnectorPull = "connector_pull"

// Request bounds.
const (
	DefaultPageSize   = 50
	MaxPageSize       = 200
	DefaultMaxRecords = 100
	MaxMaxRecords     = 1000
	MaxRecentDays     = 3650
)

// JobRequest parameterizes one connector pull.
type JobRequest struct {
	Source                 IngestionSource `json:"source"`
	Page                   int             `json:"page"`
	PageSize               int             `json:"pageSize"`
	MaxRecords             int             `json:"maxRecords"`
	RecentDays             int             `json:"recentDays"`
	MaterializeToInventory bool            `json:"materializeToInventory"`
	DetectHexFromImage     bool            `json:"detectHexFromImage"`
	OverwriteDetectedHex   bool            `json:"overwriteDetectedHex"`
	SearchTerm             string          `json:"searchTerm,omitempty"`
}

// Normalize applies defaults and clamps every numeric field into range.
func (r JobRequest) Normalize() JobRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.PageSize <= 0:
		r.PageSize = DefaultPageSize
	case r.PageSize > MaxPageSize:
		r.PageSize = MaxPageSize
	}
	switch {
	case r.MaxRecords <= 0:
		r.MaxRecords = DefaultMaxRecords
	case r.MaxRecords > MaxMaxRecords:
		r.MaxRecords = MaxMaxRecords
	}
	r.RecentDays = max(0, min(r.RecentDays, MaxRecentDays))
	r.SearchTerm = strings.TrimSpace(r.SearchTerm)
	return r
}

// RequestedMetrics echoes the request with the triggering user.
type RequestedMetrics struct {
	JobRequest
	TriggeredByUserID string `json:"triggeredByUserId"`
}

// IngestionJob is one asynchronous connector run.
type IngestionJob struct {
	ID           string          `json:"id"`
	Source       IngestionSource `json:"source"`
	JobType      string          `json:"jobType"`
	Status       JobStatus       `json:"status"`
	RequestedBy  int64           `json:"requestedBy"`
	Request      JobRequest      `json:"request"`
	Metrics      JobMetrics      `json:"metrics"`
	Error        string          `json:"error,omitempty"`
	CancelReason string          `json:"cancelReason,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	StartedAt    *time.Time      `json:"startedAt,omitempty"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IngestionQueueMessage is the wire contract between dispatcher and worker.
type IngestionQueueMessage struct {
	JobID            string           `json:"jobId"`
	UserID           string           `json:"userId"`
	QueuedAt         string           `json:"queuedAt"`
	Request          JobRequest       `json:"request"`
	RequestedMetrics RequestedMetrics `json:"requestedMetrics"`
}
