// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/config"
	"github.com/inkwell-blog/inkwell/backend/internal/database"
)

// New returns a migrated in-memory SQLite database that lives as long as t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	// Every new connection to ":memory:" is a fresh empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
