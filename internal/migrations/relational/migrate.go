// Package relational creates the relational schema used by the sqlite and postgres
// snapshot drivers.
package relational

import (
	"context"
	"database/sql"
	"fmt"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"

	SnapshotTable = "ledger_snapshots"
)

var statements = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS ledger_snapshots (
			scope_id   TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ledger_snapshots_updated_at ON ledger_snapshots (updated_at)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS ledger_snapshots (
			scope_id   TEXT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ledger_snapshots_updated_at ON ledger_snapshots (updated_at)`,
	},
}

// RunMigration applies the schema for the given dialect. Every statement is
// idempotent.
func RunMigration(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := statements[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s migration: %w", dialect, err)
		}
	}
	return nil
}
