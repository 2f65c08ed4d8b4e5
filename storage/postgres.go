package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps collection blobs in a single BYTEA table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the blob table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collection_blobs (
			collection TEXT PRIMARY KEY,
			payload BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, data []byte) error {
	if collection == "" {
		return fmt.Errorf("invalid collection name: %q", collection)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO collection_blobs (collection, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (collection) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`, collection, data); err != nil {
		return fmt.Errorf("store collection %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "SELECT payload FROM collection_blobs WHERE collection = $1", collection).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, collection)
		}
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	return payload, nil
}

var _ Blobs = (*PostgresStore)(nil)
