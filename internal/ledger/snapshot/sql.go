package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"groupstay/internal/migrations/relational"
)

// SQLStore keeps one row per scope in the ledger_snapshots table.
type SQLStore struct {
	db      *sql.DB
	dialect relational.Dialect

	loadQuery   string
	saveQuery   string
	deleteQuery string
	keysQuery   string
}

// NewSQLiteStore opens (creating if needed) a sqlite database file.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = "groupstay.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, relational.SQLite)
}

func NewPostgresStore(ctx context.Context, url string) (*SQLStore, error) {
	if url == "" {
		return nil, errors.New("postgres url required")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLStore(ctx, db, relational.Postgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect relational.Dialect) (*SQLStore, error) {
	if err := relational.RunMigration(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	ph := func(n int) string { return "?" }
	if dialect == relational.Postgres {
		ph = func(n int) string { return fmt.Sprintf("$%d", n) }
	}

	table := relational.SnapshotTable
	return &SQLStore{
		db:          db,
		dialect:     dialect,
		loadQuery:   fmt.Sprintf(`SELECT payload FROM %s WHERE scope_id = %s`, table, ph(1)),
		saveQuery: fmt.Sprintf(`INSERT INTO %s (scope_id, payload, updated_at) VALUES (%s, %s, %s)
			ON CONFLICT (scope_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
			table, ph(1), ph(2), ph(3)),
		deleteQuery: fmt.Sprintf(`DELETE FROM %s WHERE scope_id = %s`, table, ph(1)),
		keysQuery:   fmt.Sprintf(`SELECT scope_id FROM %s ORDER BY scope_id`, table),
	}, nil
}

func (s *SQLStore) Load(ctx context.Context, scopeID string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.loadQuery, scopeID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select snapshot: %w", err)
	}
	return payload, true, nil
}

func (s *SQLStore) Save(ctx context.Context, scopeID string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.saveQuery, scopeID, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, scopeID string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, scopeID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.keysQuery)
	if err != nil {
		return nil, fmt.Errorf("select scopes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
