package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupCLIEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("LACQUER_ENV", "test")
	t.Setenv("LACQUER_DB_PATH", filepath.Join(dir, "cli-test"))
	t.Setenv("LACQUER_QUEUE_NAME", "cli-jobs")
	return dir
}

func TestCatalogSeedAndCount(t *testing.T) {
	dir := setupCLIEnv(t)
	feed := filepath.Join(dir, "shades.json")
	body := `[
		{"externalId": "essie-1", "brand": "Essie", "name": "Ballet Slippers", "hex": "f4cccc"},
		{"externalId": "opi-1", "brand": "OPI", "name": "Big Apple Red"},
		{"externalId": "bad", "brand": "", "name": "No Brand"}
	]`
	if err := os.WriteFile(feed, []byte(body), 0o600); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	out, err := runCLI(t, "catalog", "seed", feed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "2 inserted") || !strings.Contains(out, "1 skipped") {
		t.Fatalf("unexpected seed output: %q", out)
	}

	out, err = runCLI(t, "catalog", "count")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected 2 shades, got %q", out)
	}
}

func TestJobsRunShowCancel(t *testing.T) {
	setupCLIEnv(t)

	if _, err := runCLI(t, "jobs", "run", "--source", "manual_feed"); err == nil {
		t.Fatalf("run without --user should fail")
	}
	if _, err := runCLI(t, "jobs", "run", "--user", "3", "--source", "myspace"); err == nil {
		t.Fatalf("unknown source should fail")
	}

	out, err := runCLI(t, "--json", "jobs", "run", "--user", "3", "--page-size", "10")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var job domain.IngestionJob
	if err := json.Unmarshal([]byte(out), &job); err != nil {
		t.Fatalf("decode run output %q: %v", out, err)
	}
	if job.Status != domain.JobStatusQueued || job.Request.PageSize != 10 {
		t.Fatalf("unexpected job: %+v", job)
	}

	out, err = runCLI(t, "jobs", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, job.ID) || !strings.Contains(out, "queued") {
		t.Fatalf("list should include the job: %q", out)
	}

	out, err = runCLI(t, "queue", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "cli-jobs") {
		t.Fatalf("stats should name the queue: %q", out)
	}

	out, err = runCLI(t, "jobs", "cancel", job.ID, "--reason", "test run")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !strings.Contains(out, "test run") {
		t.Fatalf("unexpected cancel output: %q", out)
	}

	out, err = runCLI(t, "jobs", "show", job.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "cancelled") || !strings.Contains(out, "test run") {
		t.Fatalf("show should report the cancellation: %q", out)
	}

	if _, err := runCLI(t, "queue", "purge"); err == nil {
		t.Fatalf("purge without --yes should fail")
	}
	out, err = runCLI(t, "queue", "purge", "--yes")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if !strings.Contains(out, "Purged 1") {
		t.Fatalf("unexpected purge output: %q", out)
	}
}
