// Package cache keeps recent store API response data in memory.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Config defines the cache budget.
type Config struct {
	TTL     time.Duration
	MaxCost int64
}

// ResponseCache is a TTL cache of raw response data, costed by byte length.
type ResponseCache struct {
	cache *ristretto.Cache[string, []byte]
	ttl   time.Duration
}

// NewResponseCache builds a cache. A non-positive TTL keeps entries until evicted.
func NewResponseCache(cfg Config) (*ResponseCache, error) {
	maxCost := cfg.MaxCost
	if maxCost <= 0 {
		maxCost = 1 << 24
	}
	// roughly ten counters per expected entry of ~1KB
	counters := max(maxCost/100, 1000)
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	return &ResponseCache{cache: c, ttl: cfg.TTL}, nil
}

// Get returns a copy-free view of the cached bytes. Callers must not modify it.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	return c.cache.Get(key)
}

// Set stores value under key. The write becomes visible once ristretto's buffers drain.
func (c *ResponseCache) Set(key string, value []byte) {
	cost := int64(len(value))
	if cost == 0 {
		cost = 1
	}
	if c.ttl > 0 {
		c.cache.SetWithTTL(key, value, cost, c.ttl)
		return
	}
	c.cache.Set(key, value, cost)
}

// Wait blocks until pending writes are applied.
func (c *ResponseCache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines.
func (c *ResponseCache) Close() {
	c.cache.Close()
}
