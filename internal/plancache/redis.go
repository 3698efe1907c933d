package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// RedisCache stores plans as JSON strings in Redis.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds connection settings for the Redis cache.
type RedisConfig struct {
	// URL is either a redis:// URL or a host:port address.
	URL      string
	Password string

	// KeyPrefix namespaces keys (default: "tripmate:").
	KeyPrefix string
}

// NewRedisClient builds a go-redis client from cfg.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       0,
	}), nil
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "tripmate:"
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached plan or ErrMiss.
func (c *RedisCache) Get(ctx context.Context, key string) (*itinerary.GeneratedPlan, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("reading plan from redis: %w", err)
	}

	var plan itinerary.GeneratedPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decoding cached plan: %w", err)
	}
	return &plan, nil
}

// Set stores plan under key for ttl. A non-positive ttl is a no-op.
func (c *RedisCache) Set(ctx context.Context, key string, plan *itinerary.GeneratedPlan, ttl time.Duration) error {
	if ttl <= 0 || plan == nil {
		return nil
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing plan to redis: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ Cache = (*RedisCache)(nil)
