package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrationsDirIsValid(t *testing.T) {
	count, err := ValidateDir("migrations")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProductsMigrationKeepsSectionNonOwning(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"available boolean NOT NULL DEFAULT true",
		"images text[]",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at",
		"DROP TABLE IF EXISTS products",
	} {
		assert.Contains(t, content, sub)
	}
	assert.NotContains(t, strings.ToUpper(content), "REFERENCES SECTIONS")
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	t.Run("bad name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "create_things.sql", "-- +goose Up\n-- +goose Down\n")
		_, err := ValidateDir(dir)
		assert.ErrorContains(t, err, "invalid migration filename")
	})

	t.Run("duplicate version", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "20260101000000_a.sql", "-- +goose Up\n-- +goose Down\n")
		writeFile(t, dir, "20260101000000_b.sql", "-- +goose Up\n-- +goose Down\n")
		_, err := ValidateDir(dir)
		assert.ErrorContains(t, err, "duplicate migration version")
	})

	t.Run("missing down", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "20260101000000_a.sql", "-- +goose Up\nSELECT 1;\n")
		_, err := ValidateDir(dir)
		assert.ErrorContains(t, err, "missing \"-- +goose Down\"")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ValidateDir(t.TempDir())
		assert.ErrorContains(t, err, "no migrations found")
	})
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20260301120000")
	require.NoError(t, err)
	assert.Equal(t, int64(20260301120000), v)

	_, err = ParseVersion("2026")
	assert.Error(t, err)
	_, err = ParseVersion("2026030112000x")
	assert.Error(t, err)
}

func TestApplySQLiteSchemaIsIdempotent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	db, err := conn.DB()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, ApplySQLiteSchema(ctx, db))
	require.NoError(t, ApplySQLiteSchema(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO products (id, created_at, updated_at) VALUES ('p1', datetime('now'), datetime('now'))`)
	require.NoError(t, err)

	var available bool
	require.NoError(t, db.QueryRowContext(ctx, `SELECT available FROM products WHERE id = 'p1'`).Scan(&available))
	assert.True(t, available)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
