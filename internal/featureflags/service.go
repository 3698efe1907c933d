package featureflags

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnknownFlag is returned when writing a key with no default.
var ErrUnknownFlag = errors.New("unknown feature flag")

const (
	defaultCacheTTL = time.Minute

	// retryAfterFailure spaces out store reloads while the store is failing.
	retryAfterFailure = 5 * time.Second
)

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Store    Store
	Logger   zerolog.Logger
	CacheTTL time.Duration
	// Defaults defines the known keys and their values when the store has
	// no override. Nil uses DefaultFlags.
	Defaults map[string]*Flag
}

// Service answers flag lookups from a snapshot of defaults overlaid with the
// store's overrides. The snapshot is reloaded once it is older than the
// cache TTL. When a reload fails the last snapshot keeps serving, and before
// any successful load the defaults do.
type Service struct {
	store    Store
	logger   zerolog.Logger
	ttl      time.Duration
	defaults map[string]*Flag

	mu       sync.Mutex
	snapshot map[string]*Flag
	expires  time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	defaults := cfg.Defaults
	if defaults == nil {
		defaults = DefaultFlags()
	}
	return &Service{
		store:    cfg.Store,
		logger:   cfg.Logger,
		ttl:      ttl,
		defaults: defaults,
	}
}

// current returns the live snapshot. Callers must not modify it.
func (s *Service) current(ctx context.Context) map[string]*Flag {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Before(s.expires) {
		return s.view()
	}

	stored, err := s.store.Load(ctx)
	if err != nil {
		s.expires = now.Add(min(s.ttl, retryAfterFailure))
		if s.snapshot != nil {
			s.logger.Warn().Err(err).Msg("feature flag reload failed, keeping last known values")
		} else {
			s.logger.Warn().Err(err).Msg("feature flag load failed, using defaults")
		}
		return s.view()
	}

	next := make(map[string]*Flag, len(s.defaults))
	for k, f := range s.defaults {
		next[k] = f
	}
	for k, f := range stored {
		if _, known := s.defaults[k]; !known {
			s.logger.Debug().Str("flag", k).Msg("ignoring stored value for unknown feature flag")
			continue
		}
		next[k] = f
	}
	s.snapshot = next
	s.expires = now.Add(s.ttl)
	return next
}

func (s *Service) view() map[string]*Flag {
	if s.snapshot != nil {
		return s.snapshot
	}
	return s.defaults
}

// IsEnabled reports whether the flag is switched on. Unknown keys are off.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	return s.current(ctx)[key].BoolValue(false)
}

// IsDeterministicOnly reports whether every AI tier is switched off.
func (s *Service) IsDeterministicOnly(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDeterministicOnly)
}

// IsAsyncGenerationDisabled reports whether queued generation is rejected.
func (s *Service) IsAsyncGenerationDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableAsyncGeneration)
}

// GetAllFlags returns a copy of every known flag with its effective value.
func (s *Service) GetAllFlags(ctx context.Context) map[string]*Flag {
	snap := s.current(ctx)
	out := make(map[string]*Flag, len(snap))
	for k, f := range snap {
		out[k] = f.clone()
	}
	return out
}

// SetFlags stores the given values and applies them to the snapshot at once.
// Every key must be known; nothing is written otherwise.
func (s *Service) SetFlags(ctx context.Context, flags []*Flag) error {
	now := time.Now()
	stamped := make([]*Flag, 0, len(flags))
	for _, f := range flags {
		if _, ok := s.defaults[f.Key]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFlag, f.Key)
		}
		stamped = append(stamped, &Flag{Key: f.Key, Value: f.Value, UpdatedAt: now})
	}

	if err := s.store.Save(ctx, stamped); err != nil {
		return fmt.Errorf("saving feature flags: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.view()
	next := make(map[string]*Flag, len(base))
	for k, f := range base {
		next[k] = f
	}
	for _, f := range stamped {
		next[f.Key] = f
	}
	s.snapshot = next
	return nil
}

// InvalidateCache forces the next lookup to reload from the store.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires = time.Time{}
}

// Keys returns every known flag key, sorted.
func (s *Service) Keys() []string {
	keys := make([]string, 0, len(s.defaults))
	for k := range s.defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
