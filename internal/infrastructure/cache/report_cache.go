// Package cache provides the redis-backed report cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tokopos/internal/domain/reports"
)

// keyPrefix namespaces every cache entry so InvalidateAll can scan them.
const keyPrefix = "tokopos:"

// Compile-time check.
var _ reports.Cache = (*ReportCache)(nil)

// ReportCache implements reports.Cache over redis.
type ReportCache struct {
	client *redis.Client
}

// New connects to redis and returns the cache. Fails fast on an
// unreachable server so a misconfigured address surfaces at startup.
func New(ctx context.Context, addr, password string, db int) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &ReportCache{client: client}, nil
}

// Get returns the cached value and whether it was present.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// Set stores a value with TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// InvalidateAll deletes every cache entry under the namespace.
func (c *ReportCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 500 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Close releases the redis connection.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
