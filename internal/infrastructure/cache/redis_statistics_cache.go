package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	"github.com/comercio/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisStatisticsCache implements the statistics read-through cache using
// Redis. It is suitable for distributed deployments where multiple instances
// share the cached aggregates.
type RedisStatisticsCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStatisticsCache creates a statistics cache connected to Redis
func NewRedisStatisticsCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisStatisticsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStatisticsCacheWithClient(client, ttl), nil
}

// NewRedisStatisticsCacheWithClient creates a cache over an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisStatisticsCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStatisticsCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisStatisticsCache{
		client:    client,
		keyPrefix: "comercio:",
		ttl:       ttl,
	}
}

// Get loads the cached value for key into dest. The boolean reports whether
// the key was present.
func (c *RedisStatisticsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key with the configured TTL
func (c *RedisStatisticsCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the given keys from the cache
func (c *RedisStatisticsCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.keyPrefix + key
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache keys: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStatisticsCache) Close() error {
	return c.client.Close()
}

var _ appcommerce.StatisticsCache = (*RedisStatisticsCache)(nil)
