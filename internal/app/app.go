// Package app assembles the plan generation stack from configuration. The
// API server and the worker share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/config"
	"github.com/tripmate/tripmate/internal/database"
	"github.com/tripmate/tripmate/internal/featureflags"
	"github.com/tripmate/tripmate/internal/geo"
	"github.com/tripmate/tripmate/internal/geo/google"
	"github.com/tripmate/tripmate/internal/geo/nominatim"
	"github.com/tripmate/tripmate/internal/llm"
	"github.com/tripmate/tripmate/internal/llm/gemini"
	"github.com/tripmate/tripmate/internal/llm/openai"
	"github.com/tripmate/tripmate/internal/plancache"
	"github.com/tripmate/tripmate/internal/planner"
	"github.com/tripmate/tripmate/internal/provider/resilience"
	"github.com/tripmate/tripmate/internal/tripstore"
	"github.com/tripmate/tripmate/internal/weather"
	googleweather "github.com/tripmate/tripmate/internal/weather/google"
	"github.com/tripmate/tripmate/internal/weather/openweathermap"
)

// Components is the wired service graph.
type Components struct {
	Providers *resilience.Registry
	Geo       *geo.Resolver
	Weather   *weather.Service
	Flags     *featureflags.Service
	Trips     tripstore.Repository
	Planner   *planner.Service

	closers []io.Closer
	pool    *pgxpool.Pool
}

// Build connects every backend named in cfg and wires the planner.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	c := &Components{Providers: resilience.NewRegistry()}

	if cfg.Store.Backend == config.StorePostgres {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		c.pool = pool
		if err := database.EnsureSchema(ctx, pool); err != nil {
			c.Close()
			return nil, err
		}
		logger.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")
	}

	c.Trips = tripstore.NewInMemoryRepository()
	var flagStore featureflags.Store = featureflags.NewMemoryStore()
	if c.pool != nil {
		c.Trips = tripstore.NewPostgresRepository(c.pool)
		flagStore = featureflags.NewPostgresStore(c.pool)
	}
	c.Flags = featureflags.NewService(featureflags.ServiceConfig{
		Store:  flagStore,
		Logger: logger,
	})

	c.Geo = geo.NewResolver(geo.ResolverConfig{
		Providers: c.geoProviders(cfg.Geo, logger),
		Logger:    logger,
	})
	c.Weather = weather.NewService(weather.ServiceConfig{
		Provider: c.weatherProvider(cfg.Weather, logger),
		Logger:   logger,
	})

	metrics, err := planner.NewMetrics()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating planner metrics: %w", err)
	}

	primary, err := c.aiProvider(ctx, cfg.AI, cfg.AI.Primary, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	secondary, err := c.aiProvider(ctx, cfg.AI, cfg.AI.Secondary, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	cache, err := c.planCache(cfg.Cache)
	if err != nil {
		c.Close()
		return nil, err
	}

	deterministic := planner.NewDeterministic(planner.DeterministicConfig{
		Geo:     c.Geo,
		Weather: c.Weather,
		Logger:  logger,
	})
	c.Planner = planner.NewService(planner.ServiceConfig{
		Orchestrator: planner.NewOrchestrator(planner.OrchestratorConfig{
			Primary:         primary,
			Secondary:       secondary,
			Deterministic:   deterministic,
			Flags:           c.Flags,
			TierTimeout:     cfg.AI.ProviderTimeout,
			DefaultCurrency: cfg.DefaultCurrency,
			Metrics:         metrics,
			Logger:          logger,
		}),
		Enricher:        deterministic,
		Cache:           cache,
		CacheTTL:        cfg.Cache.PlanTTL,
		DefaultCurrency: cfg.DefaultCurrency,
		Metrics:         metrics,
		Logger:          logger,
	})

	logger.Info().
		Strs("ai_tiers", c.Planner.Providers()).
		Strs("geo_providers", c.Geo.ProviderNames()).
		Str("store", cfg.Store.Backend).
		Msg("planner initialized")

	return c, nil
}

// Close releases clients and connections.
func (c *Components) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
	return errors.Join(errs...)
}

func (c *Components) httpClient(name string) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = c.Providers
	return resilience.NewClient(cfg)
}

// geoProviders returns Google Maps first when a key is configured, then Nominatim.
func (c *Components) geoProviders(cfg config.GeoConfig, logger zerolog.Logger) []geo.Provider {
	var providers []geo.Provider
	if cfg.GoogleMapsAPIKey != "" {
		providers = append(providers, google.NewClient(google.ClientConfig{
			APIKey:     cfg.GoogleMapsAPIKey,
			HTTPClient: c.httpClient(google.ProviderName),
			Logger:     logger,
		}))
	} else {
		logger.Warn().Msg("GOOGLE_MAPS_API_KEY not set, geocoding with Nominatim only")
	}
	providers = append(providers, nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    cfg.NominatimBaseURL,
		UserAgent:  cfg.NominatimUserAgent,
		HTTPClient: c.httpClient(nominatim.ProviderName),
		Logger:     logger,
	}))
	return providers
}

// weatherProvider returns nil when the selected provider has no key; the
// weather service then serves seasonal estimates.
func (c *Components) weatherProvider(cfg config.WeatherConfig, logger zerolog.Logger) weather.Provider {
	switch cfg.Provider {
	case config.WeatherOpenWeatherMap:
		if cfg.OpenWeatherMapAPIKey == "" {
			break
		}
		return openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherMapAPIKey,
			HTTPClient: c.httpClient(openweathermap.ProviderName),
			Logger:     logger,
		})
	default:
		if cfg.GoogleAPIKey == "" {
			break
		}
		return googleweather.NewClient(googleweather.ClientConfig{
			APIKey:     cfg.GoogleAPIKey,
			HTTPClient: c.httpClient(googleweather.ProviderName),
			Logger:     logger,
		})
	}
	logger.Warn().Str("provider", cfg.Provider).Msg("weather provider has no API key, using seasonal estimates")
	return nil
}

// aiProvider builds the client for one tier. A tier without a key is left
// empty and the orchestrator skips it.
func (c *Components) aiProvider(ctx context.Context, cfg config.AIConfig, name string, logger zerolog.Logger) (llm.Provider, error) {
	if name == "" || name == config.AINone {
		return nil, nil
	}
	if cfg.APIKeyFor(name) == "" {
		logger.Warn().Str("provider", name).Msg("AI provider has no API key, tier disabled")
		return nil, nil
	}

	switch name {
	case config.AIOpenAI:
		httpCfg := resilience.DefaultClientConfig(openai.ProviderName)
		httpCfg.Registry = c.Providers
		httpCfg.Timeout = cfg.ProviderTimeout
		// The tier timeout already bounds the call; retries would outlive it.
		httpCfg.NoRetry = true
		return openai.NewClient(openai.ClientConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: resilience.NewClient(httpCfg),
			Logger:     logger,
		}), nil
	case config.AIGemini:
		client, err := gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client)
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", name)
	}
}

// planCache returns a Redis cache when REDIS_URL is set, otherwise memory.
func (c *Components) planCache(cfg config.CacheConfig) (plancache.Cache, error) {
	if cfg.PlanTTL <= 0 {
		return nil, nil
	}
	if cfg.RedisURL == "" {
		return plancache.NewMemoryCache(), nil
	}

	client, err := plancache.NewRedisClient(plancache.RedisConfig{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client)
	return plancache.NewRedisCache(client, ""), nil
}
