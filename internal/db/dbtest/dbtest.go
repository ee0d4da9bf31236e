// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"catalogapi/internal/db"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Open returns a fresh, migrated in-memory database closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	if _, err := db.Migrate(context.Background(), conn, db.SQLite, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
