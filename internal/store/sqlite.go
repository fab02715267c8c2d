package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS record_collections (
		name       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore persists each collection as one row of a local database file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite wraps an open SQLite handle and applies the schema. Update relies
// on the handle beginning transactions IMMEDIATE (see infra.SQLiteDSN).
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite handle is required")
	}
	for _, stmt := range sqliteMigrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context, c Collection) ([]byte, error) {
	return sqliteList(ctx, s.db, c)
}

func (s *SQLiteStore) Put(ctx context.Context, c Collection, payload []byte) error {
	return sqlitePut(ctx, s.db, c, payload)
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// Close is a no-op; the handle is owned by the caller.
func (s *SQLiteStore) Close() error { return nil }

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) List(ctx context.Context, c Collection) ([]byte, error) {
	return sqliteList(ctx, t.tx, c)
}

func (t *sqliteTx) Put(ctx context.Context, c Collection, payload []byte) error {
	return sqlitePut(ctx, t.tx, c, payload)
}

func sqliteList(ctx context.Context, q sqlQuerier, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	var payload string
	err := q.QueryRowContext(ctx, `SELECT payload FROM record_collections WHERE name = ?`, string(c)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func sqlitePut(ctx context.Context, q sqlQuerier, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `INSERT INTO record_collections (name, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(c), string(payload))
	return err
}
