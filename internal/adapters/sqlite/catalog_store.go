package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db/queries"
)

// textSearchPrefixRunes is how much of the first word seeds the LIKE prefilter;
// the matcher does the real fuzzy scoring.
const textSearchPrefixRunes = 3

type catalogStore struct {
	q   catalogQueries
	now func() time.Time
}

func (c catalogStore) GetShade(ctx context.Context, id int64) (domain.CatalogShade, error) {
	row, err := c.q.GetCatalogShadeByID(ctx, id)
	if err != nil {
		return domain.CatalogShade{}, mapNotFound(err, "catalog shade %d", id)
	}
	return shadeFromRow(row), nil
}

func (c catalogStore) FindByBarcode(ctx context.Context, code string) (domain.CatalogShade, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.CatalogShade{}, fmt.Errorf("barcode lookup: %w", ports.ErrNotFound)
	}
	row, err := c.q.GetCatalogShadeByBarcode(ctx, code)
	if err != nil {
		return domain.CatalogShade{}, mapNotFound(err, "barcode %s", code)
	}
	return shadeFromRow(row), nil
}

func (c catalogStore) SearchByText(ctx context.Context, brand, shade string, limit int) ([]domain.CatalogShade, error) {
	brandPattern := prefixPattern(brand)
	namePattern := prefixPattern(shade)
	if brandPattern == "" && namePattern == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}
	rows, err := c.q.SearchCatalogShadesByText(ctx, queries.SearchCatalogShadesByTextParams{
		BrandPattern: brandPattern,
		NamePattern:  namePattern,
		RowLimit:     int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return shadesFromRows(rows), nil
}

func (c catalogStore) ListWithHex(ctx context.Context, limit int) ([]domain.CatalogShade, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := c.q.ListCatalogShadesWithHex(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list catalog colors: %w", err)
	}
	return shadesFromRows(rows), nil
}

func (c catalogStore) GetShadeBySourceID(ctx context.Context, source, externalID string) (domain.CatalogShade, error) {
	row, err := c.q.GetCatalogShadeBySourceExternalID(ctx, queries.GetCatalogShadeBySourceExternalIDParams{
		Source:     source,
		ExternalID: externalID,
	})
	if err != nil {
		return domain.CatalogShade{}, mapNotFound(err, "catalog shade %s/%s", source, externalID)
	}
	return shadeFromRow(row), nil
}

// upsert merges incoming into the (source, external id) row. Empty incoming
// fields keep the stored value.
func (c catalogStore) upsert(ctx context.Context, incoming domain.CatalogShade) (domain.CatalogShade, ports.UpsertOutcome, error) {
	now := formatTime(c.now())
	existing, err := c.GetShadeBySourceID(ctx, incoming.Source, incoming.ExternalID)
	if errors.Is(err, ports.ErrNotFound) {
		row, err := c.q.InsertCatalogShade(ctx, queries.InsertCatalogShadeParams{
			Brand:      incoming.Brand,
			Name:       incoming.Name,
			Sku:        incoming.SKU,
			Gtin:       incoming.GTIN,
			Finish:     incoming.Finish,
			Collection: incoming.Collection,
			Hex:        incoming.Hex,
			ImageUrl:   incoming.ImageURL,
			Source:     incoming.Source,
			ExternalID: incoming.ExternalID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return domain.CatalogShade{}, "", fmt.Errorf("insert catalog shade: %w", err)
		}
		return shadeFromRow(row), ports.UpsertInserted, nil
	}
	if err != nil {
		return domain.CatalogShade{}, "", err
	}

	merged := existing
	merged.Brand = firstNonEmpty(incoming.Brand, existing.Brand)
	merged.Name = firstNonEmpty(incoming.Name, existing.Name)
	merged.SKU = firstNonEmpty(incoming.SKU, existing.SKU)
	merged.GTIN = firstNonEmpty(incoming.GTIN, existing.GTIN)
	merged.Finish = firstNonEmpty(incoming.Finish, existing.Finish)
	merged.Collection = firstNonEmpty(incoming.Collection, existing.Collection)
	merged.Hex = firstNonEmpty(incoming.Hex, existing.Hex)
	merged.ImageURL = firstNonEmpty(incoming.ImageURL, existing.ImageURL)
	if merged == existing {
		return existing, ports.UpsertUnchanged, nil
	}

	if err := c.q.UpdateCatalogShade(ctx, queries.UpdateCatalogShadeParams{
		Brand:      merged.Brand,
		Name:       merged.Name,
		Sku:        merged.SKU,
		Gtin:       merged.GTIN,
		Finish:     merged.Finish,
		Collection: merged.Collection,
		Hex:        merged.Hex,
		ImageUrl:   merged.ImageURL,
		UpdatedAt:  now,
		ID:         existing.ID,
	}); err != nil {
		return domain.CatalogShade{}, "", fmt.Errorf("update catalog shade %d: %w", existing.ID, err)
	}
	merged.UpdatedAt = parseTime(now)
	return merged, ports.UpsertUpdated, nil
}

func (c catalogStore) EnsureInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, bool, error) {
	key := queries.GetInventoryItemByUserShadeParams{UserID: item.UserID, ShadeID: item.ShadeID}
	row, err := c.q.GetInventoryItemByUserShade(ctx, key)
	if err == nil {
		return inventoryFromRow(row), false, nil
	}
	if err = mapNotFound(err, "inventory item"); !errors.Is(err, ports.ErrNotFound) {
		return domain.InventoryItem{}, false, err
	}

	row, err = c.q.InsertInventoryItem(ctx, queries.InsertInventoryItemParams{
		UserID:    item.UserID,
		ShadeID:   item.ShadeID,
		Source:    item.Source,
		SourceRef: item.SourceRef,
		CreatedAt: formatTime(c.now()),
	})
	if isUniqueViolation(err) {
		// Lost an insert race outside a transaction; the winner's row is the answer.
		row, err = c.q.GetInventoryItemByUserShade(ctx, key)
		if err != nil {
			return domain.InventoryItem{}, false, mapNotFound(err, "inventory item")
		}
		return inventoryFromRow(row), false, nil
	}
	if err != nil {
		return domain.InventoryItem{}, false, fmt.Errorf("insert inventory item: %w", err)
	}
	return inventoryFromRow(row), true, nil
}

func (c catalogStore) ListInventory(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	rows, err := c.q.ListInventoryItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out := make([]domain.InventoryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventoryFromRow(row))
	}
	return out, nil
}

// Store-level delegates use the pooled connection.

func (s *Store) catalog() catalogStore {
	return catalogStore{q: s.db, now: s.now}
}

func (s *Store) GetShade(ctx context.Context, id int64) (domain.CatalogShade, error) {
	return s.catalog().GetShade(ctx, id)
}

func (s *Store) FindByBarcode(ctx context.Context, code string) (domain.CatalogShade, error) {
	return s.catalog().FindByBarcode(ctx, code)
}

func (s *Store) SearchByText(ctx context.Context, brand, shade string, limit int) ([]domain.CatalogShade, error) {
	return s.catalog().SearchByText(ctx, brand, shade, limit)
}

func (s *Store) ListWithHex(ctx context.Context, limit int) ([]domain.CatalogShade, error) {
	return s.catalog().ListWithHex(ctx, limit)
}

func (s *Store) GetShadeBySourceID(ctx context.Context, source, externalID string) (domain.CatalogShade, error) {
	return s.catalog().GetShadeBySourceID(ctx, source, externalID)
}

// UpsertShade inserts or refreshes a catalog row keyed on (source, external id).
func (s *Store) UpsertShade(ctx context.Context, shade domain.CatalogShade) (domain.CatalogShade, ports.UpsertOutcome, error) {
	var (
		result  domain.CatalogShade
		outcome ports.UpsertOutcome
	)
	err := s.db.WithTx(ctx, func(q *queries.Queries) error {
		var err error
		result, outcome, err = catalogStore{q: q, now: s.now}.upsert(ctx, shade)
		return err
	})
	return result, outcome, err
}

func (s *Store) EnsureInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, bool, error) {
	return s.catalog().EnsureInventoryItem(ctx, item)
}

func (s *Store) ListInventory(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	return s.catalog().ListInventory(ctx, userID)
}

// CountShades returns the catalog size.
func (s *Store) CountShades(ctx context.Context) (int64, error) {
	return s.db.CountCatalogShades(ctx)
}

func shadeFromRow(row queries.CatalogShade) domain.CatalogShade {
	return domain.CatalogShade{
		ID:         row.ID,
		Brand:      row.Brand,
		Name:       row.Name,
		SKU:        row.Sku,
		GTIN:       row.Gtin,
		Finish:     row.Finish,
		Collection: row.Collection,
		Hex:        row.Hex,
		ImageURL:   row.ImageUrl,
		Source:     row.Source,
		ExternalID: row.ExternalID,
		UpdatedAt:  parseTime(row.UpdatedAt),
	}
}

func shadesFromRows(rows []queries.CatalogShade) []domain.CatalogShade {
	out := make([]domain.CatalogShade, 0, len(rows))
	for _, row := range rows {
		out = append(out, shadeFromRow(row))
	}
	return out
}

func inventoryFromRow(row queries.InventoryItem) domain.InventoryItem {
	return domain.InventoryItem{
		ID:        row.ID,
		UserID:    row.UserID,
		ShadeID:   row.ShadeID,
		Source:    row.Source,
		SourceRef: row.SourceRef,
		CreatedAt: parseTime(row.CreatedAt),
	}
}

func prefixPattern(value string) string {
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	if utf8.RuneCountInString(word) > textSearchPrefixRunes {
		word = string([]rune(word)[:textSearchPrefixRunes])
	}
	word = strings.NewReplacer("%", "", "_", "").Replace(word)
	if word == "" {
		return ""
	}
	return "%" + word + "%"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var (
	_ ports.CatalogLookup  = (*Store)(nil)
	_ ports.CatalogWriter  = (*Store)(nil)
	_ ports.InventoryStore = (*Store)(nil)
)
