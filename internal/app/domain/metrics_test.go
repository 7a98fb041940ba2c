package domain

import (
	"testing"
	"time"
)

func TestJobMetricsMergeIsMonotonic(t *testing.T) {
	current := JobMetrics{
		Processed: 10,
		Inserted:  4,
		Connector: map[string]int64{"http_requests": 2},
		Logs:      []JobLogEntry{{Seq: 1, Level: LogLevelInfo, Message: "start"}},
	}
	next := JobMetrics{
		Processed: 7,
		Inserted:  6,
		Pages:     2,
		Connector: map[string]int64{"http_requests": 1, "rate_limited": 1},
		Pipeline:  JobPipeline{Stage: "fetch", Page: 2},
		Logs: []JobLogEntry{
			{Seq: 1, Level: LogLevelInfo, Message: "start"},
			{Seq: 2, Level: LogLevelWarn, Message: "slow page"},
		},
	}

	merged := current.Merge(next)
	if merged.Processed != 10 || merged.Inserted != 6 || merged.Pages != 2 {
		t.Fatalf("unexpected counters %#v", merged)
	}
	if merged.Connector["http_requests"] != 2 || merged.Connector["rate_limited"] != 1 {
		t.Fatalf("unexpected connector counters %#v", merged.Connector)
	}
	if len(merged.Logs) != 2 || merged.Logs[1].Seq != 2 {
		t.Fatalf("expected de-duplicated logs, got %#v", merged.Logs)
	}
	if merged.Pipeline.Stage != "fetch" || merged.SchemaVersion != JobMetricsVersion {
		t.Fatalf("unexpected pipeline %#v", merged)
	}

	again := merged.Merge(next)
	if len(again.Logs) != 2 || again.Processed != 10 {
		t.Fatalf("expected idempotent merge, got %#v", again)
	}
}

func TestJobMetricsMergeCapsLogs(t *testing.T) {
	var next JobMetrics
	for i := 1; i <= MaxJobLogEntries+25; i++ {
		next.Logs = append(next.Logs, JobLogEntry{Seq: int64(i), At: time.Unix(int64(i), 0), Level: LogLevelDebug})
	}
	merged := JobMetrics{}.Merge(next)
	if len(merged.Logs) != MaxJobLogEntries {
		t.Fatalf("expected %d logs, got %d", MaxJobLogEntries, len(merged.Logs))
	}
	if merged.LogsDropped != 25 || merged.Logs[0].Seq != 26 {
		t.Fatalf("expected oldest entries dropped, got dropped=%d first=%d", merged.LogsDropped, merged.Logs[0].Seq)
	}
}

func TestJobRequestNormalize(t *testing.T) {
	got := JobRequest{Page: -3, PageSize: 900, MaxRecords: 0, RecentDays: 9000, SearchTerm: "  red "}.Normalize()
	want := JobRequest{Page: 1, PageSize: MaxPageSize, MaxRecords: DefaultMaxRecords, RecentDays: MaxRecentDays, SearchTerm: "red"}
	if got != want {
		t.Fatalf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestCaptureStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to CaptureStatus }{
		{CaptureStatusProcessing, CaptureStatusNeedsQuestion},
		{CaptureStatusProcessing, CaptureStatusMatched},
		{CaptureStatusProcessing, CaptureStatusFailed},
		{CaptureStatusNeedsQuestion, CaptureStatusProcessing},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}
	denied := []struct{ from, to CaptureStatus }{
		{CaptureStatusNeedsQuestion, CaptureStatusMatched},
		{CaptureStatusMatched, CaptureStatusProcessing},
		{CaptureStatusFailed, CaptureStatusProcessing},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s denied", tc.from, tc.to)
		}
	}
}

func TestParseIngestionSource(t *testing.T) {
	if source, ok := ParseIngestionSource(" OpenBeautyFacts "); !ok || source != SourceOpenBeautyFacts {
		t.Fatalf("expected openbeautyfacts, got %q %v", source, ok)
	}
	if _, ok := ParseIngestionSource("ebay"); ok {
		t.Fatal("expected unknown source rejected")
	}
	if len(KnownSources()) != 4 {
		t.Fatalf("unexpected allow-list %v", KnownSources())
	}
}
