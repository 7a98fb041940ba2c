package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/config"
)

func TestFeedConnectorSendsPagingParams(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("page") != "2" || query.Get("pageSize") != "25" || query.Get("q") != "red" || query.Get("token") != "abc" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"records":  []map[string]string{{"externalId": "1", "brand": "OPI", "name": "Big Apple Red"}},
			"hasMore":  true,
			"counters": map[string]int64{"rate_limit_remaining": 99},
		})
	}))
	defer srv.Close()

	page, err := NewFeedConnector(srv.URL+"/feed?token=abc", srv.Client()).FetchPage(context.Background(), ports.FetchRequest{
		Source: domain.SourceMakeupAPI, Page: 2, PageSize: 25, SearchTerm: "red",
	})
	if err != nil {
		t.Fatalf("FetchPage error = %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].Brand != "OPI" || !page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Counters["http_requests"] != 1 || page.Counters["records_received"] != 1 || page.Counters["rate_limit_remaining"] != 99 {
		t.Fatalf("unexpected counters: %+v", page.Counters)
	}
}

func TestFeedConnectorReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFeedConnector(srv.URL, srv.Client()).FetchPage(context.Background(), ports.FetchRequest{Source: domain.SourceOpenBeautyFacts, Page: 1})
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "maintenance") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestStaticConnectorPages(t *testing.T) {
	t.Parallel()

	connector := NewStaticConnector([]ports.ConnectorRecord{{ExternalID: "a"}, {ExternalID: "b"}, {ExternalID: "c"}})
	first, err := connector.FetchPage(context.Background(), ports.FetchRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Records) != 2 || !first.HasMore {
		t.Fatalf("unexpected first page: %+v", first)
	}
	second, err := connector.FetchPage(context.Background(), ports.FetchRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Records) != 1 || second.HasMore || second.Records[0].ExternalID != "c" {
		t.Fatalf("unexpected second page: %+v", second)
	}
	past, _ := connector.FetchPage(context.Background(), ports.FetchRequest{Page: 5, PageSize: 2})
	if len(past.Records) != 0 || past.HasMore {
		t.Fatalf("pages past the end should be empty: %+v", past)
	}
}

func TestRegistryFromConfig(t *testing.T) {
	t.Parallel()

	feedFile := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(feedFile, []byte(`[{"externalId":"x","brand":"Zoya","name":"Purity"}]`), 0o600); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	registry, err := FromConfig(config.ConnectorsConfig{
		FeedURLs:       map[string]string{"makeupapi": "https://feeds.example/makeup"},
		ManualFeedFile: feedFile,
	}, nil)
	if err != nil {
		t.Fatalf("FromConfig error = %v", err)
	}
	if got := registry.Sources(); len(got) != 2 || got[0] != domain.SourceMakeupAPI || got[1] != domain.SourceManualFeed {
		t.Fatalf("unexpected sources: %v", got)
	}
	if _, err := registry.Connector(domain.SourceShopifyStorefront); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}

	if _, err := FromConfig(config.ConnectorsConfig{FeedURLs: map[string]string{"sephora": "https://x"}}, nil); err == nil {
		t.Fatalf("unknown sources should be rejected")
	}
}
