package tripstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for development and testing.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{trips: make(map[string]*Trip)}
}

// Save creates or replaces a trip.
func (r *InMemoryRepository) Save(_ context.Context, trip *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.trips[trip.ID]; ok {
		trip.CreatedAt = existing.CreatedAt
	} else if trip.CreatedAt.IsZero() {
		trip.CreatedAt = now
	}
	trip.UpdatedAt = now

	cpy := *trip
	r.trips[trip.ID] = &cpy
	return nil
}

// Get retrieves a trip by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	cpy := *t
	return &cpy, nil
}

// ListByOwner returns an owner's trips, newest first.
func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]*Trip, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	var out []*Trip
	for _, t := range r.trips {
		if t.OwnerID == ownerID {
			cpy := *t
			out = append(out, &cpy)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping always succeeds.
func (r *InMemoryRepository) Ping(context.Context) error {
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
