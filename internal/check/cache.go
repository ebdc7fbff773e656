// Package check implements the availability pipeline: result cache, request
// window, per-candidate status map and the batched scheduler.
package check

import (
	"context"
	"sync"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Cache memoizes check results by candidate+suffix
type Cache interface {
	Get(ctx context.Context, key string) (domain.CheckResult, bool, error)
	Put(ctx context.Context, key string, result domain.CheckResult) error
}

// CacheKey is the cache key of a candidate+suffix pair
func CacheKey(candidate, suffix string) string {
	return candidate + suffix
}

// MemoryCache is an unbounded session cache. Nothing is ever evicted.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]domain.CheckResult
}

// NewMemoryCache returns an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]domain.CheckResult)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (domain.CheckResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[key]
	return r, ok, nil
}

// Put stores or overwrites the result for key
func (c *MemoryCache) Put(_ context.Context, key string, result domain.CheckResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = result
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every cached result
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]domain.CheckResult)
}
