package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// updateLockKey serialises Update calls across every process sharing the database.
const updateLockKey int64 = 0x5357_4950

const postgresSchema = `
CREATE TABLE IF NOT EXISTS record_collections (
    name       TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists each collection as one JSONB row.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed store and ensures its table exists.
func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres pool is required")
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create record_collections: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) List(ctx context.Context, c Collection) ([]byte, error) {
	return pgList(ctx, s.db, c)
}

func (s *PostgresStore) Put(ctx context.Context, c Collection, payload []byte) error {
	return pgPut(ctx, s.db, c, payload)
}

// Update runs fn in a transaction holding a transaction-scoped advisory lock.
func (s *PostgresStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, updateLockKey); err != nil {
		return fmt.Errorf("acquire update lock: %w", err)
	}

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) List(ctx context.Context, c Collection) ([]byte, error) {
	return pgList(ctx, t.tx, c)
}

func (t *postgresTx) Put(ctx context.Context, c Collection, payload []byte) error {
	return pgPut(ctx, t.tx, c, payload)
}

func pgList(ctx context.Context, q pgQuerier, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	var payload []byte
	err := q.QueryRow(ctx, `SELECT payload::text FROM record_collections WHERE name = $1`, string(c)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func pgPut(ctx context.Context, q pgQuerier, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `INSERT INTO record_collections (name, payload, updated_at)
        VALUES ($1, $2::jsonb, now())
        ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		string(c), string(payload))
	return err
}
