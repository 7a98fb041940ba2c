package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fr0stylo/lacquer/internal/app/ports"
)

// StaticConnector serves a fixed record list in pages. It backs the manual
// feed source and local fixtures.
type StaticConnector struct {
	records []ports.ConnectorRecord
}

func NewStaticConnector(records []ports.ConnectorRecord) *StaticConnector {
	return &StaticConnector{records: records}
}

// LoadStaticFile reads a JSON array of records.
func LoadStaticFile(path string) (*StaticConnector, error) {
	records, err := ReadRecordsFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticConnector(records), nil
}

// ReadRecordsFile decodes a JSON array of connector records.
func ReadRecordsFile(path string) ([]ports.ConnectorRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []ports.ConnectorRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return records, nil
}

func (c *StaticConnector) FetchPage(ctx context.Context, req ports.FetchRequest) (ports.FetchPage, error) {
	if err := ctx.Err(); err != nil {
		return ports.FetchPage{}, err
	}
	page := max(req.Page, 1)
	size := req.PageSize
	if size <= 0 {
		size = len(c.records)
	}
	start := (page - 1) * size
	if start >= len(c.records) {
		return ports.FetchPage{}, nil
	}
	end := min(start+size, len(c.records))
	return ports.FetchPage{
		Records:  c.records[start:end],
		HasMore:  end < len(c.records),
		Counters: map[string]int64{"records_received": int64(end - start)},
	}, nil
}
