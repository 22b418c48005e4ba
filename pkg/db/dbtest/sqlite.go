// Package dbtest opens throwaway SQL databases for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/futamarket/market-backend/pkg/db"
	"github.com/futamarket/market-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite returns an isolated in-memory database with the market schema.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.ApplySQLiteSchema(context.Background(), sqlDB); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}
