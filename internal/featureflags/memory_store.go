package featureflags

import (
	"context"
	"sync"
)

// MemoryStore keeps overrides in process. It backs deployments without a
// database and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]*Flag
}

// NewMemoryStore returns a store holding the given overrides.
func NewMemoryStore(seed ...*Flag) *MemoryStore {
	s := &MemoryStore{flags: make(map[string]*Flag, len(seed))}
	for _, f := range seed {
		s.flags[f.Key] = f.clone()
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context) (map[string]*Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Flag, len(s.flags))
	for k, f := range s.flags {
		out[k] = f.clone()
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, flags []*Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range flags {
		s.flags[f.Key] = f.clone()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
