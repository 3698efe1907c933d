package tripstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. Requests
// and plans are stored as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save creates or replaces a trip.
func (r *PostgresRepository) Save(ctx context.Context, trip *Trip) error {
	requestJSON, err := json.Marshal(trip.Request)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	var planJSON []byte
	if trip.Plan != nil {
		planJSON, err = json.Marshal(trip.Plan)
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
	}

	query := `
		INSERT INTO trips (id, owner_id, request, plan, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			request = EXCLUDED.request,
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		trip.ID,
		trip.OwnerID,
		requestJSON,
		planJSON,
		string(trip.Status),
		trip.Error,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
}

// Get retrieves a trip by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Trip, error) {
	query := `
		SELECT id, owner_id, request, plan, status, error, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	trip, err := scanTrip(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}

// ListByOwner returns an owner's trips, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Trip, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, owner_id, request, plan, status, error, created_at, updated_at
		FROM trips
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Ping checks the database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var (
		trip        Trip
		status      string
		requestJSON []byte
		planJSON    []byte
	)

	err := row.Scan(
		&trip.ID,
		&trip.OwnerID,
		&requestJSON,
		&planJSON,
		&status,
		&trip.Error,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	trip.Status = Status(status)
	if err := json.Unmarshal(requestJSON, &trip.Request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	if len(planJSON) > 0 {
		if err := json.Unmarshal(planJSON, &trip.Plan); err != nil {
			return nil, fmt.Errorf("decoding plan: %w", err)
		}
	}
	return &trip, nil
}

var _ Repository = (*PostgresRepository)(nil)
