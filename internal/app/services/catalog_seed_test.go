package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

func TestShadeFromRecordNormalizes(t *testing.T) {
	t.Parallel()

	shade, ok := ShadeFromRecord("makeupapi", ports.ConnectorRecord{
		Brand: " Essie ", Name: "Mint Candy Apple", GTIN: "0-95008-00123-4", Hex: "98ff98",
	})
	if !ok {
		t.Fatalf("expected a usable record")
	}
	if shade.Brand != "Essie" || shade.Hex != "#98FF98" || shade.ExternalID == "" || shade.Source != "makeupapi" {
		t.Fatalf("unexpected shade: %+v", shade)
	}

	if _, ok := ShadeFromRecord("makeupapi", ports.ConnectorRecord{Brand: "Essie", ExternalID: "x"}); ok {
		t.Fatalf("record without a name must be rejected")
	}
}

func TestSeedCatalogCountsOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	records := []ports.ConnectorRecord{
		{ExternalID: "a", Brand: "OPI", Name: "Big Apple Red"},
		{ExternalID: "b", Brand: "OPI", Name: "Lincoln Park After Dark"},
		{ExternalID: "c", Brand: "", Name: "Nameless"},
	}

	first, err := SeedCatalog(ctx, store, domain.SourceManualFeed, records)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first != (SeedResult{Inserted: 2, Skipped: 1}) {
		t.Fatalf("unexpected first seed result: %+v", first)
	}

	records[0].Hex = "#C8102E"
	second, err := SeedCatalog(ctx, store, domain.SourceManualFeed, records)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if second != (SeedResult{Updated: 1, Skipped: 2}) {
		t.Fatalf("unexpected reseed result: %+v", second)
	}

	if _, err := SeedCatalog(ctx, store, "myspace", records); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected unknown source, got %v", err)
	}
}
