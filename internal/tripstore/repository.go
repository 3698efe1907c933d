package tripstore

import "context"

// DefaultListLimit caps ListByOwner when no limit is given.
const DefaultListLimit = 50

// Repository defines the interface for trip persistence.
type Repository interface {
	// Save creates or replaces a trip.
	Save(ctx context.Context, trip *Trip) error

	// Get retrieves a trip by ID. Returns ErrTripNotFound if absent.
	Get(ctx context.Context, id string) (*Trip, error)

	// ListByOwner returns an owner's trips, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Trip, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
