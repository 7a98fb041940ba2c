package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/observability"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// FeedConnector reads pages from an HTTP JSON feed:
//
//	GET <endpoint>?page=1&pageSize=50&recentDays=0&q=term
//	{"records": [...], "hasMore": true, "counters": {"...": 1}}
type FeedConnector struct {
	endpoint   string
	httpClient *http.Client
}

// NewFeedConnector builds a connector for endpoint. A nil client gets a
// traced client with a 30 second timeout.
func NewFeedConnector(endpoint string, client *http.Client) *FeedConnector {
	if client == nil {
		client = observability.NewHTTPClient(30 * time.Second)
	}
	return &FeedConnector{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: client,
	}
}

type feedResponse struct {
	Records  []ports.ConnectorRecord `json:"records"`
	HasMore  bool                    `json:"hasMore"`
	Counters map[string]int64        `json:"counters"`
}

func (c *FeedConnector) FetchPage(ctx context.Context, req ports.FetchRequest) (ports.FetchPage, error) {
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return ports.FetchPage{}, fmt.Errorf("feed endpoint: %w", err)
	}
	query := target.Query()
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("pageSize", strconv.Itoa(req.PageSize))
	query.Set("recentDays", strconv.Itoa(req.RecentDays))
	if req.SearchTerm != "" {
		query.Set("q", req.SearchTerm)
	}
	target.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return ports.FetchPage{}, err
	}
	httpReq.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.FetchPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ports.FetchPage{}, fmt.Errorf("%s feed returned %d: %s", req.Source, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.FetchPage{}, fmt.Errorf("decode %s feed page %d: %w", req.Source, req.Page, err)
	}
	counters := make(map[string]int64, len(parsed.Counters)+2)
	for key, value := range parsed.Counters {
		counters[key] = value
	}
	counters["http_requests"]++
	counters["records_received"] += int64(len(parsed.Records))
	return ports.FetchPage{Records: parsed.Records, HasMore: parsed.HasMore, Counters: counters}, nil
}
