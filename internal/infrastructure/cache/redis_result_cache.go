package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "dicowi:"

// RedisResultCache stores results in Redis so several server instances
// share them
type RedisResultCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisResultCache connects to Redis and checks the connection
func NewRedisResultCache(cfg config.RedisConfig) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResultCacheWithClient(client, defaultKeyPrefix), nil
}

// NewRedisResultCacheWithClient creates a cache over an existing client
func NewRedisResultCacheWithClient(client *redis.Client, keyPrefix string) *RedisResultCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisResultCache{client: client, keyPrefix: keyPrefix}
}

// Get implements analytics.ResultCache. A missing key is a miss, not an
// error.
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}
	return value, true, nil
}

// Set implements analytics.ResultCache
func (c *RedisResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cached result: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

// Ensure RedisResultCache implements ResultCache
var _ analytics.ResultCache = (*RedisResultCache)(nil)
