package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uberswe/domaingen/pkg/domain"
)

// RedisCache shares check results between runs and processes
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisCacheOption configures a RedisCache
type RedisCacheOption func(*RedisCache)

// WithCachePrefix sets the key namespace
func WithCachePrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) { c.prefix = strings.Trim(prefix, ":") }
}

// WithCacheTTL expires entries after d. Zero keeps them forever.
func WithCacheTTL(d time.Duration) RedisCacheOption {
	return func(c *RedisCache) { c.ttl = d }
}

// NewRedisCache wraps an existing client
func NewRedisCache(rdb redis.UniversalClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{rdb: rdb, prefix: "domaingen"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(k string) string {
	return fmt.Sprintf("%s:check:%s", c.prefix, k)
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.CheckResult, bool, error) {
	var r domain.CheckResult
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, false, fmt.Errorf("decode cached result %s: %w", key, err)
	}
	return r, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, result domain.CheckResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
