package fxrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the last live rate for a TTL.
type Cache interface {
	// Get returns the cached rate and whether it was present.
	Get(ctx context.Context, key string) (float64, bool, error)
	// Set stores rate for ttl.
	Set(ctx context.Context, key string, rate float64, ttl time.Duration) error
}

// RedisCache is a Redis-backed Cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr string) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr: addr,
	}))
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	v, err := c.client.Get(ctx, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, rate float64, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, rate, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	rate    float64
	expires time.Time
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || !c.now().Before(e.expires) {
		return 0, false, nil
	}
	return e.rate, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, rate float64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = memoryEntry{rate: rate, expires: c.now().Add(ttl)}
	return nil
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*MemoryCache)(nil)
)
