package db

import (
	"context"
	"database/sql"

	"github.com/fr0stylo/lacquer/internal/db/queries"
)

// WithTx runs fn inside one transaction. The queries handed to fn share the
// latency tracker of the parent connection.
func (c *Database) WithTx(ctx context.Context, fn func(*queries.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(queries.New(newInstrumentedDBTX(tx, c.tracker))); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}
	return tx.Commit()
}

// Ping verifies the connection is usable.
func (c *Database) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
