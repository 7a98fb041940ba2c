package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsForLocalDevelopment(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("LACQUER_SESSION_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Auth.SessionSecret != "lacquer-local-dev" {
		t.Fatalf("expected local fallback secret, got %q", cfg.Auth.SessionSecret)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/lacquer" {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Worker.QueueName != "ingestion-jobs" || !cfg.Worker.InProcess {
		t.Fatalf("expected in-process worker on default queue, got %#v", cfg.Worker)
	}
	if cfg.Worker.PollInterval != time.Second || cfg.Worker.VisibilityTimeout != 5*time.Minute || cfg.Worker.MaxDeliveries != 5 {
		t.Fatalf("unexpected worker defaults: %#v", cfg.Worker)
	}
	if cfg.Capture.MaxFrameBytes != 8<<20 || cfg.Capture.MaxFinalizeAttempts != 20 {
		t.Fatalf("unexpected capture defaults: %#v", cfg.Capture)
	}
}

func TestLoadRequiresSessionSecretOutsideLocal(t *testing.T) {
	t.Setenv("LACQUER_ENV", "production")
	t.Setenv("LACQUER_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing session secret in production")
	}
}

func TestLoadForToolAllowsMissingSessionSecretOutsideLocal(t *testing.T) {
	t.Setenv("LACQUER_ENV", "production")
	t.Setenv("LACQUER_SESSION_SECRET", "")

	cfg, err := LoadForTool()
	if err != nil {
		t.Fatalf("expected no error for tool config load, got %v", err)
	}
	if cfg.Auth.SessionSecret != "" {
		t.Fatalf("expected empty session secret for tool load, got %q", cfg.Auth.SessionSecret)
	}
	if cfg.Worker.InProcess {
		t.Fatal("expected in-process worker off outside local environments")
	}
}

func TestDevAuthUserIgnoredOutsideLocal(t *testing.T) {
	t.Setenv("LACQUER_ENV", "production")
	t.Setenv("LACQUER_SESSION_SECRET", "s3cret")
	t.Setenv("LACQUER_DEV_AUTH_USER_ID", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Auth.DevAuthUserID != 0 {
		t.Fatalf("expected dev auth bypass disabled in production, got %d", cfg.Auth.DevAuthUserID)
	}

	t.Setenv("LACQUER_ENV", "local")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Auth.DevAuthUserID != 7 {
		t.Fatalf("expected dev auth user 7 locally, got %d", cfg.Auth.DevAuthUserID)
	}
}

func TestLoadParsesAdminsAndConnectorURLs(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("LACQUER_ADMIN_USER_IDS", "9, 3")
	t.Setenv("LACQUER_CONNECTOR_URLS", "OpenBeautyFacts=https://feeds.example/obf, manual_feed=http://localhost:9000/feed")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsAdmin(3) || !cfg.IsAdmin(9) || cfg.IsAdmin(4) {
		t.Fatalf("unexpected admin set %#v", cfg.Auth.AdminUserIDs)
	}
	if cfg.Connectors.FeedURLs["openbeautyfacts"] != "https://feeds.example/obf" {
		t.Fatalf("expected lower-cased source key, got %#v", cfg.Connectors.FeedURLs)
	}
	if cfg.Connectors.FeedURLs["manual_feed"] != "http://localhost:9000/feed" {
		t.Fatalf("expected manual feed url, got %#v", cfg.Connectors.FeedURLs)
	}
}

func TestLoadRejectsMalformedAdminIDs(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("LACQUER_ADMIN_USER_IDS", "1,abc")

	if _, err := Load(); err == nil {
		t.Fatal("expected malformed admin id to fail")
	}
}

func TestLoadRejectsNonHTTPConnectorURL(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("LACQUER_CONNECTOR_URLS", "makeupapi=ftp://example.com/feed")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http connector url to fail")
	}
}

func TestLoadParsesOTLPHeadersAndMetricsConsole(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer common,x-org=abc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-trace=trace-only")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_HEADERS", "x-metric=metric-only")
	t.Setenv("LACQUER_OTEL_METRICS_CONSOLE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Observability.Enabled || !cfg.Observability.MetricsConsole {
		t.Fatal("expected observability enabled when console metrics is true")
	}
	if cfg.Observability.OTLPTraceHeaders["authorization"] != "Bearer common" || cfg.Observability.OTLPTraceHeaders["x-trace"] != "trace-only" {
		t.Fatalf("unexpected trace headers %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPMetricHeaders["authorization"] != "Bearer common" || cfg.Observability.OTLPMetricHeaders["x-metric"] != "metric-only" {
		t.Fatalf("unexpected metric headers %#v", cfg.Observability.OTLPMetricHeaders)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Setenv("LACQUER_ENV", "dev")
	t.Setenv("LACQUER_HEXDETECT_ENABLED", "true")
	t.Setenv("LACQUER_HEXDETECT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing openai key to fail")
	}
}
