// Package testutil provides shared test helpers for the log server.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/StarsWhere/log-server/internal/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite capture index with schema.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() {
		db.Close()
	})

	// In-memory SQLite keeps its data per connection; a second
	// connection would see an empty database.
	db.SetMaxOpenConns(1)

	err = database.InitSchema(db)
	require.NoError(t, err, "failed to create schema")

	return db
}

// NewTestLogger creates a no-op logger for testing.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}
