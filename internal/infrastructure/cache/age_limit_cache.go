package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"age-checker-shopify-layer/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "age-checker:age-limit:"

// RedisAgeLimitCache stores shop age limits in Redis with a TTL
type RedisAgeLimitCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisAgeLimitCache creates a cache on top of a Redis client
func NewRedisAgeLimitCache(client redis.Cmdable, ttl time.Duration) *RedisAgeLimitCache {
	return &RedisAgeLimitCache{client: client, ttl: ttl}
}

var _ ports.AgeLimitCache = (*RedisAgeLimitCache)(nil)

func cacheKey(shopDomain string) string {
	return keyPrefix + shopDomain
}

// Get returns the cached age limit, found is false on a miss
func (c *RedisAgeLimitCache) Get(ctx context.Context, shopDomain string) (int, bool, error) {
	value, err := c.client.Get(ctx, cacheKey(shopDomain)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read age limit cache: %w", err)
	}

	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt age limit cache entry for %s: %w", shopDomain, err)
	}
	return limit, true, nil
}

// Set stores the age limit for a shop
func (c *RedisAgeLimitCache) Set(ctx context.Context, shopDomain string, ageLimit int) error {
	if err := c.client.Set(ctx, cacheKey(shopDomain), strconv.Itoa(ageLimit), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write age limit cache: %w", err)
	}
	return nil
}

// NopAgeLimitCache is used when no Redis URL is configured
type NopAgeLimitCache struct{}

var _ ports.AgeLimitCache = NopAgeLimitCache{}

func (NopAgeLimitCache) Get(context.Context, string) (int, bool, error) { return 0, false, nil }

func (NopAgeLimitCache) Set(context.Context, string, int) error { return nil }

// NewFromURL connects to Redis when url is set, otherwise returns a no-op cache.
// The returned close function is always safe to call.
func NewFromURL(ctx context.Context, url string, ttl time.Duration) (ports.AgeLimitCache, func() error, error) {
	if url == "" {
		return NopAgeLimitCache{}, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisAgeLimitCache(client, ttl), client.Close, nil
}
