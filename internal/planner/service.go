package planner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/plancache"
)

// ServiceConfig holds configuration for the planning service.
type ServiceConfig struct {
	Orchestrator *Orchestrator
	Enricher     *Deterministic

	// Dedup is shared by every caller of the service (default: a new one).
	Dedup *Deduplicator

	// Cache is optional; CacheTTL <= 0 disables caching.
	Cache    plancache.Cache
	CacheTTL time.Duration

	DefaultCurrency string
	Metrics         *Metrics
	Logger          zerolog.Logger
}

// Service is the entry point for plan generation.
type Service struct {
	orchestrator    *Orchestrator
	enricher        *Deterministic
	dedup           *Deduplicator
	cache           plancache.Cache
	cacheTTL        time.Duration
	defaultCurrency string
	metrics         *Metrics
	logger          zerolog.Logger
}

// NewService creates a new planning service.
func NewService(cfg ServiceConfig) *Service {
	dedup := cfg.Dedup
	if dedup == nil {
		dedup = NewDeduplicator(cfg.Metrics)
	}
	enricher := cfg.Enricher
	if enricher == nil {
		enricher = cfg.Orchestrator.deterministic
	}
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = itinerary.DefaultCurrency
	}

	return &Service{
		orchestrator:    cfg.Orchestrator,
		enricher:        enricher,
		dedup:           dedup,
		cache:           cfg.Cache,
		cacheTTL:        cfg.CacheTTL,
		defaultCurrency: currency,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
	}
}

// GeneratePlan validates req and returns a plan for it. Identical requests
// that arrive while one is being generated share its result, down to the
// same *GeneratedPlan. Errors wrap itinerary.ErrInvalidInput or
// itinerary.ErrGenerationFailed.
func (s *Service) GeneratePlan(ctx context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error) {
	norm := req.Normalize(s.defaultCurrency)
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	key := norm.CanonicalKey(s.defaultCurrency)

	if plan, ok := s.cached(ctx, key); ok {
		return plan, nil
	}

	future := s.dedup.Submit(ctx, key, func(taskCtx context.Context) (*itinerary.GeneratedPlan, error) {
		return s.generate(taskCtx, key, norm)
	})
	if future.Joined() {
		s.logger.Debug().Str("request_key", key).Msg("joined in-flight plan generation")
	}
	return future.Wait(ctx)
}

// InFlight returns the canonical keys currently being generated.
func (s *Service) InFlight() []string {
	return s.dedup.InFlight()
}

// Providers returns the configured AI providers in tier order.
func (s *Service) Providers() []string {
	return s.orchestrator.ProviderNames()
}

func (s *Service) generate(ctx context.Context, key string, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error) {
	start := time.Now()
	currency := req.Currency(s.defaultCurrency)

	plan, trace, err := s.orchestrator.Run(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("request_key", key).
			Str("destination", req.Destination).
			Str("state", string(trace.Final())).
			Msg("plan generation failed")
		return nil, err
	}

	if plan.Provenance != itinerary.ProvenanceDeterministic {
		s.enricher.Enrich(ctx, plan, req, currency)
	}

	s.logger.Info().
		Str("request_key", key).
		Str("destination", req.Destination).
		Str("provenance", plan.Provenance).
		Int("attempts", len(trace.Attempts)).
		Dur("duration", time.Since(start)).
		Msg("plan generated")

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, plan, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("request_key", key).Msg("caching plan failed")
		}
	}
	return plan, nil
}

func (s *Service) cached(ctx context.Context, key string) (*itinerary.GeneratedPlan, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	plan, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, plancache.ErrMiss) {
			s.logger.Warn().Err(err).Str("request_key", key).Msg("reading plan cache failed")
		}
		s.metrics.RecordCache(ctx, false)
		return nil, false
	}
	s.metrics.RecordCache(ctx, true)
	return plan, true
}
