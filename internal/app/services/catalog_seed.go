package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

// ShadeFromRecord maps a connector record onto a catalog row for source.
// ok is false when the record lacks a brand, a name or any stable id.
func ShadeFromRecord(source string, record ports.ConnectorRecord) (domain.CatalogShade, bool) {
	shade := domain.CatalogShade{
		Brand:      strings.TrimSpace(record.Brand),
		Name:       strings.TrimSpace(record.Name),
		SKU:        strings.TrimSpace(record.SKU),
		GTIN:       domain.NormalizeBarcode(record.GTIN),
		Finish:     strings.TrimSpace(record.Finish),
		Collection: strings.TrimSpace(record.Collection),
		ImageURL:   strings.TrimSpace(record.ImageURL),
		Source:     source,
		ExternalID: firstNonBlank(record.ExternalID, record.GTIN, record.SKU),
	}
	if value, ok := domain.NormalizeHex(record.Hex); ok {
		shade.Hex = value
	}
	return shade, shade.Brand != "" && shade.Name != "" && shade.ExternalID != ""
}

// SeedResult counts what SeedCatalog did.
type SeedResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// SeedCatalog upserts records under source without going through the queue.
// It stops at the first store error; rows written before it stay written.
func SeedCatalog(ctx context.Context, catalog ports.CatalogWriter, source domain.IngestionSource, records []ports.ConnectorRecord) (SeedResult, error) {
	parsed, ok := domain.ParseIngestionSource(string(source))
	if !ok {
		return SeedResult{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	var result SeedResult
	for _, record := range records {
		shade, ok := ShadeFromRecord(string(parsed), record)
		if !ok {
			result.Skipped++
			continue
		}
		_, outcome, err := catalog.UpsertShade(ctx, shade)
		if err != nil {
			return result, fmt.Errorf("seed %s/%s: %w", shade.Source, shade.ExternalID, err)
		}
		switch outcome {
		case ports.UpsertInserted:
			result.Inserted++
		case ports.UpsertUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
