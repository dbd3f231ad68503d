// Package feecache stores the last known service fee of each floor in Redis
// so that fallbacks survive restarts and are shared between runs.
package feecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/automail/core/fee"
)

// Config holds the Redis connection settings.
type Config struct {
	Addr     string        `json:"addr"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Prefix   string        `json:"prefix"`
	TTL      time.Duration `json:"ttl"`
}

// RedisCache implements fee.Cache on top of Redis.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ fee.Cache = (*RedisCache)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(rdb, cfg.Prefix, cfg.TTL), nil
}

// NewWithClient wraps an existing client. A zero ttl keeps entries forever.
func NewWithClient(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "automail:fee"
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(floor int) string {
	return c.prefix + ":" + strconv.Itoa(floor)
}

// Get returns the cached fee of floor.
func (c *RedisCache) Get(ctx context.Context, floor int) (float64, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(floor)).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get fee floor %d: %w", floor, err)
	}
	return v, true, nil
}

// Set stores the fee of floor.
func (c *RedisCache) Set(ctx context.Context, floor int, f float64) error {
	if err := c.rdb.Set(ctx, c.key(floor), f, c.ttl).Err(); err != nil {
		return fmt.Errorf("set fee floor %d: %w", floor, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error { return c.rdb.Close() }
