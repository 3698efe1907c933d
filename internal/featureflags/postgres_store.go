package featureflags

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	loadFlagsSQL = `SELECT key, value, updated_at FROM feature_flags`

	upsertFlagSQL = `
		INSERT INTO feature_flags (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
)

// PostgresStore keeps overrides in the feature_flags table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on the shared pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) (map[string]*Flag, error) {
	rows, err := s.pool.Query(ctx, loadFlagsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying feature flags: %w", err)
	}
	flags, err := pgx.CollectRows(rows, scanFlag)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Flag, len(flags))
	for _, f := range flags {
		out[f.Key] = f
	}
	return out, nil
}

// Save queues every upsert into one batch and sends it inside a transaction,
// so an admin update lands whole or not at all.
func (s *PostgresStore) Save(ctx context.Context, flags []*Flag) error {
	batch := &pgx.Batch{}
	for _, f := range flags {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("encoding flag %s: %w", f.Key, err)
		}
		batch.Queue(upsertFlagSQL, f.Key, raw, f.UpdatedAt)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func scanFlag(row pgx.CollectableRow) (*Flag, error) {
	var (
		f   Flag
		raw []byte
	)
	if err := row.Scan(&f.Key, &raw, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &f.Value); err != nil {
		return nil, fmt.Errorf("decoding flag %s: %w", f.Key, err)
	}
	return &f, nil
}

var _ Store = (*PostgresStore)(nil)
