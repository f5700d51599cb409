// internal/common/database/schema.go
package database

import (
	"context"
	"fmt"
	"strings"
)

// tables of the relational log; {{pk}} and {{real}} are filled per dialect
var tables = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id {{pk}},
		when_ts {{real}},
		data TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id {{pk}},
		when_ts {{real}},
		kind TEXT,
		payload TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id {{pk}},
		when_ts {{real}},
		title TEXT,
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id {{pk}},
		key TEXT,
		value TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS apps (
		id {{pk}},
		key TEXT,
		path TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id {{pk}},
		name TEXT,
		phone TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_status_when ON reminders (status, when_ts)`,
}

// SchemaStatements returns the DDL for the dialect.
func SchemaStatements(d Dialect) []string {
	pk, real := "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	if d == DialectPostgres {
		pk, real = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}
	r := strings.NewReplacer("{{pk}}", pk, "{{real}}", real)

	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = r.Replace(t)
	}
	return out
}

// EnsureSchema creates any missing table. Safe to call repeatedly.
func (c *SQLClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SchemaStatements(c.Dialect) {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
