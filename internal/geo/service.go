package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// ResolverConfig holds configuration for the resolver.
type ResolverConfig struct {
	// Providers are tried in order; the first non-empty answer wins.
	Providers []Provider

	// Logger for resolver operations.
	Logger zerolog.Logger

	// CacheTTL is how long resolved points and candidates are cached (default: 24 hours).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data when every provider fails (default: 7 days).
	StaleIfErrorTTL time.Duration

	// MaxCandidates caps the candidates returned per category (default: 20).
	MaxCandidates int

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Resolver resolves destinations and candidate POIs through an ordered list
// of providers. It is safe for concurrent use.
type Resolver struct {
	providers       []Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	maxCandidates   int
	now             func() time.Time

	mu         sync.RWMutex
	centers    map[string]*cachedPoint
	candidates map[string]*cachedCandidates
}

type cachedPoint struct {
	point     itinerary.GeoPoint
	fetchedAt time.Time
	expiresAt time.Time
}

type cachedCandidates struct {
	pois      []itinerary.CandidatePOI
	fetchedAt time.Time
	expiresAt time.Time
}

// NewResolver creates a new resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 7 * 24 * time.Hour
	}

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 20
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Resolver{
		providers:       cfg.Providers,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		maxCandidates:   maxCandidates,
		now:             now,
		centers:         make(map[string]*cachedPoint),
		candidates:      make(map[string]*cachedCandidates),
	}
}

// ProviderNames returns the configured provider names in priority order.
func (r *Resolver) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// ResolveCenter resolves free text to a point. It returns
// itinerary.ErrNotFound when no provider can resolve the text.
func (r *Resolver) ResolveCenter(ctx context.Context, text string) (itinerary.GeoPoint, error) {
	key := normalizeQuery(text)
	if key == "" {
		return itinerary.GeoPoint{}, itinerary.ErrNotFound
	}

	r.mu.RLock()
	cached, ok := r.centers[key]
	r.mu.RUnlock()
	if ok && r.now().Before(cached.expiresAt) {
		return cached.point, nil
	}

	var lastErr error
	for _, p := range r.providers {
		point, err := p.Geocode(ctx, text)
		if err != nil {
			if !errors.Is(err, itinerary.ErrNotFound) {
				lastErr = err
				r.logger.Warn().Err(err).
					Str("provider", p.Name()).
					Str("destination", text).
					Msg("geocoding failed")
			}
			continue
		}
		if point.IsZero() {
			continue
		}

		now := r.now()
		r.mu.Lock()
		r.centers[key] = &cachedPoint{point: point, fetchedAt: now, expiresAt: now.Add(r.cacheTTL)}
		r.mu.Unlock()
		return point, nil
	}

	if ok && lastErr != nil && r.now().Before(cached.fetchedAt.Add(r.staleIfErrorTTL)) {
		r.logger.Warn().
			Time("fetched_at", cached.fetchedAt).
			Str("destination", text).
			Msg("serving stale geocode due to provider errors")
		return cached.point, nil
	}

	if lastErr != nil {
		return itinerary.GeoPoint{}, fmt.Errorf("%w: %s: %w", itinerary.ErrNotFound, text, lastErr)
	}
	return itinerary.GeoPoint{}, fmt.Errorf("%w: %s", itinerary.ErrNotFound, text)
}

// FindCandidates returns POIs of a category around a destination. Provider
// failures are logged and yield an empty slice; this never fails.
func (r *Resolver) FindCandidates(ctx context.Context, text string, center itinerary.GeoPoint, category itinerary.POICategory) []itinerary.CandidatePOI {
	query := normalizeQuery(text)
	if query == "" {
		return []itinerary.CandidatePOI{}
	}
	key := fmt.Sprintf("%s|%s|%.2f,%.2f", category, query, center.Lat, center.Lon)

	r.mu.RLock()
	cached, ok := r.candidates[key]
	r.mu.RUnlock()
	if ok && r.now().Before(cached.expiresAt) {
		return clonePOIs(cached.pois)
	}

	failed := false
	for _, p := range r.providers {
		pois, err := p.SearchPlaces(ctx, text, center, category, r.maxCandidates)
		if err != nil {
			failed = true
			r.logger.Warn().Err(err).
				Str("provider", p.Name()).
				Str("destination", text).
				Str("category", string(category)).
				Msg("place search failed")
			continue
		}
		if len(pois) == 0 {
			continue
		}

		pois = dedupePOIs(pois, category, r.maxCandidates)
		now := r.now()
		r.mu.Lock()
		r.candidates[key] = &cachedCandidates{pois: pois, fetchedAt: now, expiresAt: now.Add(r.cacheTTL)}
		r.mu.Unlock()
		return clonePOIs(pois)
	}

	if ok && failed && r.now().Before(cached.fetchedAt.Add(r.staleIfErrorTTL)) {
		return clonePOIs(cached.pois)
	}

	r.logger.Debug().
		Str("destination", text).
		Str("category", string(category)).
		Msg("no candidates found")
	return []itinerary.CandidatePOI{}
}

// Prewarm resolves a destination and both candidate pools so later plan
// requests for it are served from cache.
func (r *Resolver) Prewarm(ctx context.Context, text string) error {
	center, err := r.ResolveCenter(ctx, text)
	if err != nil {
		return err
	}
	r.FindCandidates(ctx, text, center, itinerary.CategoryAttraction)
	r.FindCandidates(ctx, text, center, itinerary.CategoryRestaurant)
	return nil
}

// CacheStats returns cache statistics.
func (r *Resolver) CacheStats() CacheStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return CacheStats{Centers: len(r.centers), CandidateSets: len(r.candidates)}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Centers       int `json:"centers"`
	CandidateSets int `json:"candidateSets"`
}

func normalizeQuery(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// dedupePOIs drops entries without an id or location, forces the requested
// category and keeps the first occurrence of each id.
func dedupePOIs(pois []itinerary.CandidatePOI, category itinerary.POICategory, limit int) []itinerary.CandidatePOI {
	seen := make(map[string]bool, len(pois))
	out := make([]itinerary.CandidatePOI, 0, len(pois))
	for _, poi := range pois {
		if poi.ID == "" || poi.Location.IsZero() || seen[poi.ID] {
			continue
		}
		seen[poi.ID] = true
		poi.Category = category
		out = append(out, poi)
		if len(out) == limit {
			break
		}
	}
	return out
}

func clonePOIs(pois []itinerary.CandidatePOI) []itinerary.CandidatePOI {
	out := make([]itinerary.CandidatePOI, len(pois))
	copy(out, pois)
	return out
}
