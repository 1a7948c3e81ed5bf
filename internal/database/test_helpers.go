package database

import (
	"testing"

	"github.com/machwatch/curator/internal/config"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive for the whole
// test.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	db, err := NewDB(config.DatabaseConfig{
		Type:       "sqlite",
		SQLitePath: ":memory:",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.Conn().SetMaxOpenConns(1)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}
