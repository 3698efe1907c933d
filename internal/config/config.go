// Package config loads service configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Weather providers.
const (
	WeatherGoogle         = "google"
	WeatherOpenWeatherMap = "openweathermap"
)

// AI providers that can fill a generation tier.
const (
	AIOpenAI = "openai"
	AIGemini = "gemini"
	AINone   = "none"
)

// Config is the full service configuration.
type Config struct {
	Port        string
	Environment string
	RequireTLS  bool

	Telemetry TelemetryConfig
	Geo       GeoConfig
	Weather   WeatherConfig
	AI        AIConfig
	Cache     CacheConfig
	Store     StoreConfig
	Auth      AuthConfig
	PubSub    PubSubConfig
	Worker    WorkerConfig

	DefaultCurrency string
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

// GeoConfig holds geocoding and places provider settings.
type GeoConfig struct {
	GoogleMapsAPIKey   string
	NominatimBaseURL   string
	NominatimUserAgent string
}

// WeatherConfig selects and configures the weather provider.
type WeatherConfig struct {
	Provider             string
	GoogleAPIKey         string
	OpenWeatherMapAPIKey string
}

// AIConfig configures the AI generation tiers.
type AIConfig struct {
	Primary   string
	Secondary string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	// ProviderTimeout bounds each tier attempt.
	ProviderTimeout time.Duration
}

// CacheConfig configures the plan result cache.
type CacheConfig struct {
	// PlanTTL <= 0 disables the cache.
	PlanTTL       time.Duration
	RedisURL      string
	RedisPassword string
}

// StoreConfig selects the trip store. Postgres connection settings are read
// by database.ConfigFromEnv.
type StoreConfig struct {
	Backend string
}

// AuthConfig configures bearer token verification. An empty signing key
// disables auth.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// PubSubConfig configures async plan generation.
type PubSubConfig struct {
	ProjectID    string
	Topic        string
	Subscription string
}

// WorkerConfig controls background jobs in cmd/worker.
type WorkerConfig struct {
	// PrewarmInterval schedules cache prewarming; zero disables it.
	PrewarmInterval    time.Duration
	PrewarmConcurrency int
	MaxOutstanding     int
}

// Enabled reports whether a project is configured.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	mapsKey := getEnv("GOOGLE_MAPS_API_KEY", "")
	planTTL, err := getDuration("PLAN_CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	providerTimeout, err := getDuration("PROVIDER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	prewarmInterval, err := getDuration("PREWARM_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("APP_PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		RequireTLS:  getBool("REQUIRE_TLS", false),
		Telemetry: TelemetryConfig{
			Enabled:      getBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
		Geo: GeoConfig{
			GoogleMapsAPIKey:   mapsKey,
			NominatimBaseURL:   getEnv("NOMINATIM_BASE_URL", ""),
			NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "tripmate"),
		},
		Weather: WeatherConfig{
			Provider:             strings.ToLower(getEnv("WEATHER_PROVIDER", WeatherGoogle)),
			GoogleAPIKey:         getEnv("GOOGLE_WEATHER_API_KEY", mapsKey),
			OpenWeatherMapAPIKey: getEnv("OPENWEATHERMAP_API_KEY", ""),
		},
		AI: AIConfig{
			Primary:         strings.ToLower(getEnv("AI_PRIMARY", AIOpenAI)),
			Secondary:       strings.ToLower(getEnv("AI_SECONDARY", AIGemini)),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			ProviderTimeout: providerTimeout,
		},
		Cache: CacheConfig{
			PlanTTL:       planTTL,
			RedisURL:      getEnv("REDIS_URL", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		},
		Auth: AuthConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
			Issuer:     getEnv("JWT_ISSUER", "tripmate"),
			Audience:   getEnv("JWT_AUDIENCE", "tripmate-api"),
		},
		PubSub: PubSubConfig{
			ProjectID:    getEnv("PUBSUB_PROJECT_ID", ""),
			Topic:        getEnv("PUBSUB_TOPIC", "tripmate-jobs"),
			Subscription: getEnv("PUBSUB_SUBSCRIPTION", "tripmate-jobs-worker"),
		},
		Worker: WorkerConfig{
			PrewarmInterval:    prewarmInterval,
			PrewarmConcurrency: getInt("PREWARM_CONCURRENCY", 3),
			MaxOutstanding:     getInt("WORKER_MAX_OUTSTANDING", 10),
		},
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "INR")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreMemory, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unsupported value %q", c.Store.Backend))
	}

	switch c.Weather.Provider {
	case WeatherGoogle, WeatherOpenWeatherMap:
	default:
		errs = append(errs, fmt.Errorf("WEATHER_PROVIDER: unsupported value %q", c.Weather.Provider))
	}

	for name, value := range map[string]string{"AI_PRIMARY": c.AI.Primary, "AI_SECONDARY": c.AI.Secondary} {
		switch value {
		case AIOpenAI, AIGemini, AINone, "":
		default:
			errs = append(errs, fmt.Errorf("%s: unsupported value %q", name, value))
		}
	}
	if c.AI.Primary != "" && c.AI.Primary != AINone && c.AI.Primary == c.AI.Secondary {
		errs = append(errs, fmt.Errorf("AI_PRIMARY and AI_SECONDARY must differ, both are %q", c.AI.Primary))
	}

	if len(c.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY: expected a 3-letter code, got %q", c.DefaultCurrency))
	}

	return errors.Join(errs...)
}

// APIKeyFor returns the API key of an AI provider.
func (c AIConfig) APIKeyFor(provider string) string {
	switch provider {
	case AIOpenAI:
		return c.OpenAIAPIKey
	case AIGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("90s") and bare seconds ("90").
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}
