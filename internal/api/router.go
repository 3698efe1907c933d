// Package api provides the HTTP API for TripMate.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/api/handler"
	"github.com/tripmate/tripmate/internal/api/middleware"
	"github.com/tripmate/tripmate/internal/auth"
	"github.com/tripmate/tripmate/internal/featureflags"
	"github.com/tripmate/tripmate/internal/provider/resilience"
	"github.com/tripmate/tripmate/internal/tripstore"
)

// PlanService generates plans and reports generation status.
// planner.Service satisfies it.
type PlanService interface {
	handler.PlanGenerator
	handler.GenerationStatus
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	// TokenValidator enables bearer auth. Without it the plan endpoints are
	// anonymous and the admin endpoints are not mounted.
	TokenValidator middleware.TokenValidator

	Planner            PlanService
	Trips              tripstore.Repository
	Publisher          handler.JobPublisher
	FeatureFlagService *featureflags.Service
	Providers          *resilience.Registry
	DefaultCurrency    string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripmate-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsCfg := handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Planner:   cfg.Planner,
	}
	// Typed nils must not reach the handler interfaces.
	if cfg.Trips != nil {
		opsCfg.Store = cfg.Trips
	}
	if cfg.Providers != nil {
		opsCfg.Providers = cfg.Providers
	}
	if cfg.FeatureFlagService != nil {
		opsCfg.Flags = cfg.FeatureFlagService
	}
	opsHandler := handler.NewOpsHandler(opsCfg)
	metadataHandler := handler.NewMetadataHandler()

	plansCfg := handler.PlansConfig{
		Generator:       cfg.Planner,
		Trips:           cfg.Trips,
		Publisher:       cfg.Publisher,
		DefaultCurrency: cfg.DefaultCurrency,
		Logger:          cfg.Logger,
	}
	if cfg.FeatureFlagService != nil {
		plansCfg.Flags = cfg.FeatureFlagService
	}
	plansHandler := handler.NewPlansHandler(plansCfg)

	authMiddleware := passThrough
	if cfg.TokenValidator != nil {
		authMiddleware = middleware.Auth(cfg.TokenValidator)
	}

	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)     // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			// Generation fans out to AI and geo providers, strict rate limiting.
			r.Group(func(r chi.Router) {
				r.Use(expensiveRateLimit)
				r.Use(middleware.RequireJSON)
				r.Post("/plans:generate", plansHandler.GeneratePlan)
				r.Post("/plans:enqueue", plansHandler.EnqueuePlan)
			})

			r.With(middleware.RateLimitByUser(middleware.StandardRateLimit)).
				Get("/plans/{planId}", plansHandler.GetPlan)
		})

		if cfg.TokenValidator != nil && cfg.FeatureFlagService != nil {
			featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService, cfg.Logger)

			r.Route("/admin", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(middleware.RequireScope(auth.ScopeAdmin))
				r.Use(standardRateLimit)

				r.Route("/feature-flags", func(r chi.Router) {
					r.Get("/", featureFlagsHandler.ListFeatureFlags)
					r.With(middleware.RequireJSON).Put("/", featureFlagsHandler.UpsertFeatureFlags)
					r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
				})
			})
		}
	})

	return r
}

func passThrough(next http.Handler) http.Handler {
	return next
}
