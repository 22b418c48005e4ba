package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema mirrors the goose migrations for local and test databases.
// Arrays are stored in their Postgres text form, which pq.StringArray reads back.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sections (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_created_at ON sections (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		title TEXT,
		price NUMERIC,
		available BOOLEAN NOT NULL DEFAULT 1,
		section_id TEXT,
		short TEXT,
		"full" TEXT,
		location TEXT,
		images TEXT DEFAULT '{}',
		video TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_products_section_id ON products (section_id)`,
}

// ApplySQLiteSchema creates the sections and products tables when missing.
func ApplySQLiteSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
