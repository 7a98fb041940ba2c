package db

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/lacquer/internal/db/queries"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var driver = "sqlite"

// Database wraps sqlc queries with the shared connection.
type Database struct {
	*queries.Queries
	db      *sql.DB
	tracker *queryLatencyTracker
}

// New opens the SQLite database at the provided path and applies migrations.
// The parent directory is created when missing.
func New(path string, openParams ...string) (*Database, error) {
	if path == "" {
		path = "data/lacquer"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open(driver, sqliteDSN(path, openParams...))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	tracker := newQueryLatencyTracker()
	return &Database{db: db, Queries: queries.New(newInstrumentedDBTX(db, tracker)), tracker: tracker}, nil
}

// sqliteDSN builds the connection string. Transactions begin IMMEDIATE so a
// read-then-write inside WithTx holds the write lock from its first statement.
func sqliteDSN(path string, openParams ...string) string {
	values := url.Values{}
	values.Set("_txlock", "immediate")

	values.Add("_pragma", "foreign_keys(ON)")
	values.Add("_pragma", "journal_mode(WAL)")
	values.Add("_pragma", "synchronous(NORMAL)")
	values.Add("_pragma", "busy_timeout(5000)")
	values.Add("_pragma", "temp_store(MEMORY)")

	for _, param := range openParams {
		part := strings.TrimSpace(strings.TrimPrefix(param, "&"))
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		values.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return fmt.Sprintf("file:%s.sqlite?%s", path, values.Encode())
}

// Close closes the underlying database connection.
func (c *Database) Close() error {
	return c.db.Close()
}
