package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

const metricsVersionKey = "metrics:version"

// MetricsCache stores computed aggregates. Keys are namespaced by a version counter so
// that one INCR invalidates every cached result at once.
type MetricsCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type redisMetricsCache struct {
	client *redis.Client
}

// NewRedisMetricsCache returns a Redis-backed MetricsCache.
func NewRedisMetricsCache(client *redis.Client) MetricsCache {
	return &redisMetricsCache{client: client}
}

func (c *redisMetricsCache) versionedKey(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, metricsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("metrics:v%d:%s", version, key), nil
}

func (c *redisMetricsCache) Get(ctx context.Context, key string, dest any) error {
	full, err := c.versionedKey(ctx, key)
	if err != nil {
		return err
	}
	raw, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisMetricsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	full, err := c.versionedKey(ctx, key)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, full, payload, ttl).Err()
}

func (c *redisMetricsCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, metricsVersionKey).Err()
}
