// Package plancache stores finished plans under their canonical request key.
package plancache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// ErrMiss is returned when no live entry exists for a key.
var ErrMiss = errors.New("plan cache miss")

// Cache stores plans for a limited time.
type Cache interface {
	// Get returns the cached plan or ErrMiss.
	Get(ctx context.Context, key string) (*itinerary.GeneratedPlan, error)

	// Set stores plan under key for ttl.
	Set(ctx context.Context, key string, plan *itinerary.GeneratedPlan, ttl time.Duration) error
}

// MemoryCache is an in-process Cache. It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	plan      *itinerary.GeneratedPlan
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached plan or ErrMiss.
func (c *MemoryCache) Get(_ context.Context, key string) (*itinerary.GeneratedPlan, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Another writer may have refreshed the entry meanwhile.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrMiss
	}
	return entry.plan, nil
}

// Set stores plan under key for ttl. A non-positive ttl is a no-op.
func (c *MemoryCache) Set(_ context.Context, key string, plan *itinerary.GeneratedPlan, ttl time.Duration) error {
	if ttl <= 0 || plan == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{plan: plan, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache = (*MemoryCache)(nil)
