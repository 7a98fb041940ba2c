package ports

import (
	"context"

	"github.com/fr0stylo/lacquer/internal/app/domain"
)

// CatalogLookup is the read side the matcher scores against.
type CatalogLookup interface {
	GetShade(ctx context.Context, id int64) (domain.CatalogShade, error)
	// FindByBarcode matches a normalized GTIN or SKU exactly.
	FindByBarcode(ctx context.Context, code string) (domain.CatalogShade, error)
	SearchByText(ctx context.Context, brand, shade string, limit int) ([]domain.CatalogShade, error)
	ListWithHex(ctx context.Context, limit int) ([]domain.CatalogShade, error)
}

// UpsertOutcome reports what an upsert did to the catalog row.
type UpsertOutcome string

const (
	UpsertInserted  UpsertOutcome = "inserted"
	UpsertUpdated   UpsertOutcome = "updated"
	UpsertUnchanged UpsertOutcome = "unchanged"
)

// CatalogWriter is the write side used by ingestion.
type CatalogWriter interface {
	GetShadeBySourceID(ctx context.Context, source, externalID string) (domain.CatalogShade, error)
	UpsertShade(ctx context.Context, shade domain.CatalogShade) (domain.CatalogShade, UpsertOutcome, error)
}

// InventoryStore materializes owned shades.
type InventoryStore interface {
	// EnsureInventoryItem returns the existing row for (user, shade) or
	// inserts one. created is false when the row already existed.
	EnsureInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, bool, error)
	ListInventory(ctx context.Context, userID int64) ([]domain.InventoryItem, error)
}

// ColorDistance returns a perceptual distance between two hex colors.
type ColorDistance func(hexA, hexB string) (float64, error)
