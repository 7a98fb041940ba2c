package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string
	LogLevel      string
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Worker        WorkerConfig
	Connectors    ConnectorsConfig
	HexDetect     HexDetectConfig
	Capture       CaptureConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path      string
	LogTiming bool
}

type AuthConfig struct {
	SessionSecret      string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	SecureCookie       bool
	DevAuthUserID      int64
	AdminUserIDs       []int64
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

type WorkerConfig struct {
	QueueName         string
	InProcess         bool
	PollInterval      time.Duration
	VisibilityTimeout time.Duration
	MaxDeliveries     int
}

type ConnectorsConfig struct {
	// FeedURLs maps an ingestion source name to its JSON feed endpoint.
	FeedURLs map[string]string
	// ManualFeedFile is a JSON record list served for the manual_feed source.
	ManualFeedFile string
	Timeout        time.Duration
}

type HexDetectConfig struct {
	Enabled      bool
	Provider     string
	Model        string
	OllamaHost   string
	OpenAIAPIKey string
}

type CaptureConfig struct {
	MaxFrameBytes       int
	MaxFinalizeAttempts int
}

func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that do not require auth session secrets.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireSessionSecret bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("lacquer_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("lacquer_log_level", "info")
	v.SetDefault("lacquer_port", 8080)
	v.SetDefault("lacquer_db_path", "data/lacquer")
	v.SetDefault("lacquer_db_timing", false)
	v.SetDefault("lacquer_secure_cookie", false)
	v.SetDefault("lacquer_dev_auth_user_id", 0)
	v.SetDefault("lacquer_admin_user_ids", "")
	v.SetDefault("lacquer_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "lacquer")
	v.SetDefault("lacquer_version", "dev")
	v.SetDefault("lacquer_otel_sampling_ratio", 1.0)
	v.SetDefault("lacquer_otel_metrics_console", false)
	v.SetDefault("lacquer_queue_name", "ingestion-jobs")
	v.SetDefault("lacquer_worker_poll_ms", 1000)
	v.SetDefault("lacquer_worker_visibility_seconds", 300)
	v.SetDefault("lacquer_worker_max_deliveries", 5)
	v.SetDefault("lacquer_connector_urls", "")
	v.SetDefault("lacquer_connector_timeout_seconds", 30)
	v.SetDefault("lacquer_manual_feed_file", "")
	v.SetDefault("lacquer_hexdetect_enabled", false)
	v.SetDefault("lacquer_hexdetect_provider", "ollama")
	v.SetDefault("lacquer_hexdetect_model", "llava")
	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("lacquer_capture_max_frame_bytes", 8<<20)
	v.SetDefault("lacquer_capture_max_finalize_attempts", 20)

	env := resolveEnvironment(v)
	port := v.GetInt("lacquer_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid LACQUER_PORT: %d", port)
	}

	samplingRatio := clampFloat(v.GetFloat64("lacquer_otel_sampling_ratio"), 0, 1)

	callbackURL := strings.TrimSpace(v.GetString("github_callback_url"))
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = "lacquer"
	}
	serviceVersion := strings.TrimSpace(v.GetString("lacquer_version"))
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	metricsConsole := v.GetBool("lacquer_otel_metrics_console")

	adminIDs, err := parseUserIDList(v.GetString("lacquer_admin_user_ids"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LACQUER_ADMIN_USER_IDS: %w", err)
	}
	feedURLs, err := parseConnectorURLs(v.GetString("lacquer_connector_urls"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LACQUER_CONNECTOR_URLS: %w", err)
	}

	cfg := Config{
		Environment: env,
		LogLevel:    strings.TrimSpace(v.GetString("lacquer_log_level")),
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path:      strings.TrimSpace(v.GetString("lacquer_db_path")),
			LogTiming: v.GetBool("lacquer_db_timing"),
		},
		Auth: AuthConfig{
			SessionSecret:      strings.TrimSpace(v.GetString("lacquer_session_secret")),
			GitHubClientID:     strings.TrimSpace(v.GetString("github_client_id")),
			GitHubClientSecret: strings.TrimSpace(v.GetString("github_client_secret")),
			GitHubCallbackURL:  callbackURL,
			SecureCookie:       v.GetBool("lacquer_secure_cookie"),
			DevAuthUserID:      v.GetInt64("lacquer_dev_auth_user_id"),
			AdminUserIDs:       adminIDs,
		},
		Observability: ObservabilityConfig{
			Enabled:           v.GetBool("lacquer_otel_enabled") || otlpEndpoint != "" || metricsConsole,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
		Worker: WorkerConfig{
			QueueName:         strings.TrimSpace(v.GetString("lacquer_queue_name")),
			PollInterval:      time.Duration(clampInt(v.GetInt("lacquer_worker_poll_ms"), 50, 60_000)) * time.Millisecond,
			VisibilityTimeout: time.Duration(clampInt(v.GetInt("lacquer_worker_visibility_seconds"), 5, 24*3600)) * time.Second,
			MaxDeliveries:     clampInt(v.GetInt("lacquer_worker_max_deliveries"), 1, 100),
		},
		Connectors: ConnectorsConfig{
			FeedURLs:       feedURLs,
			ManualFeedFile: strings.TrimSpace(v.GetString("lacquer_manual_feed_file")),
			Timeout:        time.Duration(clampInt(v.GetInt("lacquer_connector_timeout_seconds"), 1, 600)) * time.Second,
		},
		HexDetect: HexDetectConfig{
			Enabled:      v.GetBool("lacquer_hexdetect_enabled"),
			Provider:     strings.ToLower(strings.TrimSpace(v.GetString("lacquer_hexdetect_provider"))),
			Model:        strings.TrimSpace(v.GetString("lacquer_hexdetect_model")),
			OllamaHost:   strings.TrimSpace(v.GetString("ollama_host")),
			OpenAIAPIKey: strings.TrimSpace(v.GetString("openai_api_key")),
		},
		Capture: CaptureConfig{
			MaxFrameBytes:       clampInt(v.GetInt("lacquer_capture_max_frame_bytes"), 1024, 64<<20),
			MaxFinalizeAttempts: clampInt(v.GetInt("lacquer_capture_max_finalize_attempts"), 1, 1000),
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/lacquer"
	}
	if cfg.Worker.QueueName == "" {
		cfg.Worker.QueueName = "ingestion-jobs"
	}
	// In-process worker defaults on for local runs only.
	if v.IsSet("lacquer_worker_in_process") {
		cfg.Worker.InProcess = v.GetBool("lacquer_worker_in_process")
	} else {
		cfg.Worker.InProcess = cfg.IsLocalDevelopment()
	}
	if !cfg.IsLocalDevelopment() {
		cfg.Auth.DevAuthUserID = 0
	}
	if cfg.Auth.DevAuthUserID < 0 {
		return Config{}, fmt.Errorf("invalid LACQUER_DEV_AUTH_USER_ID: %d", cfg.Auth.DevAuthUserID)
	}
	if requireSessionSecret && !cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		return Config{}, fmt.Errorf("LACQUER_SESSION_SECRET is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = "lacquer-local-dev"
	}
	if cfg.HexDetect.Enabled && cfg.HexDetect.Provider == "openai" && cfg.HexDetect.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required when LACQUER_HEXDETECT_PROVIDER=openai")
	}

	return cfg, nil
}

func parseOTLPHeaders(raw string) map[string]string {
	out := parsePairs(raw)
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePairs(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func parseConnectorURLs(raw string) (map[string]string, error) {
	pairs := parsePairs(raw)
	out := make(map[string]string, len(pairs))
	for source, endpoint := range pairs {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			return nil, fmt.Errorf("source %q: endpoint must be http(s), got %q", source, endpoint)
		}
		out[strings.ToLower(source)] = endpoint
	}
	return out, nil
}

func parseUserIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("user id %q must be a positive integer", part)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func clampInt(value, lo, hi int) int {
	return max(lo, min(value, hi))
}

func clampFloat(value, lo, hi float64) float64 {
	return max(lo, min(value, hi))
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the user may operate ingestion jobs.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.Auth.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"lacquer_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
