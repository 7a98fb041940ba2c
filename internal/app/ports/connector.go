package ports

import (
	"context"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// FetchRequest asks a connector for one page of records.
type FetchRequest struct {
	Source     domain.IngestionSource
	Page       int
	PageSize   int
	RecentDays int
	SearchTerm string
}

// ConnectorRecord is one vendor product already mapped to catalog fields.
type ConnectorRecord struct {
	ExternalID string `json:"externalId"`
	Brand      string `json:"brand"`
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	GTIN       string `json:"gtin,omitempty"`
	Finish     string `json:"finish,omitempty"`
	Collection string `json:"collection,omitempty"`
	Hex        string `json:"hex,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// FetchPage is one page of connector output.
type FetchPage struct {
	Records []ConnectorRecord
	HasMore bool
	// Counters are connector-specific figures merged into job metrics.
	Counters map[string]int64
}

// Connector pulls product records from one external source.
type Connector interface {
	FetchPage(ctx context.Context, req FetchRequest) (FetchPage, error)
}

// ConnectorRegistry resolves the connector for a source.
type ConnectorRegistry interface {
	Connector(source domain.IngestionSource) (Connector, error)
}

// ImageInput is an image handed to hex detection, by URL or inline bytes.
type ImageInput struct {
	URL      string
	Data     []byte
	MimeType string
}

// HexDetector estimates the dominant polish color of a product image.
type HexDetector interface {
	DetectHex(ctx context.Context, image ImageInput) (string, error)
}
