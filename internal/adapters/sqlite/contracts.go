package sqlite

import (
	"context"
	"database/sql"

	"github.com/fr0stylo/lacquer/internal/db/queries"
)

// catalogQueries is satisfied by both the pooled database and a tx-scoped
// *queries.Queries, so catalog and inventory code runs in either.
type catalogQueries interface {
	GetCatalogShadeByID(ctx context.Context, id int64) (queries.CatalogShade, error)
	GetCatalogShadeByBarcode(ctx context.Context, code string) (queries.CatalogShade, error)
	SearchCatalogShadesByText(ctx context.Context, arg queries.SearchCatalogShadesByTextParams) ([]queries.CatalogShade, error)
	ListCatalogShadesWithHex(ctx context.Context, limit int64) ([]queries.CatalogShade, error)
	GetCatalogShadeBySourceExternalID(ctx context.Context, arg queries.GetCatalogShadeBySourceExternalIDParams) (queries.CatalogShade, error)
	InsertCatalogShade(ctx context.Context, arg queries.InsertCatalogShadeParams) (queries.CatalogShade, error)
	UpdateCatalogShade(ctx context.Context, arg queries.UpdateCatalogShadeParams) error

	GetInventoryItemByUserShade(ctx context.Context, arg queries.GetInventoryItemByUserShadeParams) (queries.InventoryItem, error)
	InsertInventoryItem(ctx context.Context, arg queries.InsertInventoryItemParams) (queries.InventoryItem, error)
	ListInventoryItemsByUser(ctx context.Context, userID int64) ([]queries.InventoryItem, error)
}

type storeDatabase interface {
	catalogQueries

	CountCatalogShades(ctx context.Context) (int64, error)

	UpsertUser(ctx context.Context, arg queries.UpsertUserParams) (queries.User, error)
	GetUserByID(ctx context.Context, id int64) (queries.User, error)

	InsertIngestionJob(ctx context.Context, arg queries.InsertIngestionJobParams) error
	GetIngestionJob(ctx context.Context, id string) (queries.IngestionJob, error)
	ListIngestionJobs(ctx context.Context, limit int64) ([]queries.IngestionJob, error)
	MarkIngestionJobRunning(ctx context.Context, arg queries.MarkIngestionJobRunningParams) (int64, error)
	CancelIngestionJob(ctx context.Context, arg queries.CancelIngestionJobParams) (int64, error)

	EnqueueMessage(ctx context.Context, arg queries.EnqueueMessageParams) (int64, error)
	ClaimNextMessage(ctx context.Context, arg queries.ClaimNextMessageParams) (queries.QueueMessage, error)
	DeleteLeasedMessage(ctx context.Context, arg queries.DeleteLeasedMessageParams) (int64, error)
	ReleaseLeasedMessage(ctx context.Context, arg queries.ReleaseLeasedMessageParams) (int64, error)
	PurgeQueue(ctx context.Context, queue string) (int64, error)
	QueueStats(ctx context.Context, arg queries.QueueStatsParams) (queries.QueueStatsRow, error)
	CountDeadLetters(ctx context.Context, queue string) (int64, error)

	WithTx(ctx context.Context, fn func(*queries.Queries) error) error
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func nullFloat64(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}
