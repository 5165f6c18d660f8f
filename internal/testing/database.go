package testing

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/flix/internal/shared"
)

// NewTestDB opens an in-memory SQLite database with migrations applied.
//
// The pool is pinned to one connection because each ":memory:" connection is its own database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
