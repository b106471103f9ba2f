// Package sqldbtest opens throwaway SQLite catalogs for tests.
package sqldbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/datakamer/datakamer-backend/config"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb"
)

// Open returns a migrated SQLite database under t.TempDir, closed on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + filepath.Join(t.TempDir(), "catalog.db"),
	}
	db, err := sqldb.NewConnection(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqldb.Migrate(context.Background(), db, sqldb.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
