// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/db"
)

// New returns a fresh, fully migrated database that is closed when the test
// ends. Every call gets its own isolated in-memory database.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	database, err := db.Init(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("dbtest: init: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("dbtest: migrate: %v", err)
	}

	return database
}
