// Package cache wraps the Redis client used for project reads and signin throttling.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client is the cache surface the application depends on
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr increments key and starts its expiry window on the first hit
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// RedisClient implements Client on top of go-redis
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient connects to addr and verifies the connection
func NewRedisClient(ctx context.Context, addr string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisClient{rdb: rdb}, nil
}

func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// incrWindowScript increments KEYS[1] and gives it a TTL of ARGV[1] ms whenever it has none,
// so a counter can never outlive its window.
const incrWindowScript = `
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func (c *RedisClient) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrWindow(ctx, c.rdb, key, window)
}

func incrWindow(ctx context.Context, e evaler, key string, window time.Duration) (int64, error) {
	return e.Eval(ctx, incrWindowScript, []string{key}, window.Milliseconds()).Int64()
}

// Ping reports whether redis is reachable, for health checks
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connections
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
