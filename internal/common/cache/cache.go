// internal/common/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"travel-companion/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Cache is the process-wide provider response cache. Entries are immutable
// once written and expire by TTL; writes are insert-or-replace per key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Close() error
}

// RedisCache backs the response cache with Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache.
func NewRedis(cfg config.RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisCache{client: rdb}
}

// NewRedisFromClient wraps an existing client (used by tests with miniredis).
func NewRedisFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Ping tests the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// NoOp is used when no Redis is configured; every lookup misses.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (*NoOp) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }
func (*NoOp) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}
func (*NoOp) Close() error { return nil }

// ==========================
// Key Schema
// ==========================

// WeatherKey keys a forecast by destination and trip window.
func WeatherKey(destination string, start time.Time, days int) string {
	return fmt.Sprintf("weather:%s:%s:%d", normalize(destination), start.Format("2006-01-02"), days)
}

// SearchKey keys web facts by destination and interest tag set.
func SearchKey(destination string, tags []string) string {
	sorted := make([]string, len(tags))
	for i, t := range tags {
		sorted[i] = normalize(t)
	}
	sort.Strings(sorted)
	return fmt.Sprintf("facts:%s:%s", normalize(destination), strings.Join(sorted, ","))
}

// TransportKey keys route options by the source/destination pair.
func TransportKey(source, destination string) string {
	return fmt.Sprintf("transport:%s:%s", normalize(source), normalize(destination))
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
