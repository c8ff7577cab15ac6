// SPDX-License-Identifier: MIT

// Package memo provides function-result memoization on top of pluggable
// cache backends: a TTL in-memory cache, Redis, and a persistent on-disk
// store. Values cross the Cache interface as bytes so every backend behaves
// identically.
package memo

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/genutil/metrics"
)

// Cache provides thread-safe caching with expiration support.
type Cache interface {
	// Get retrieves a value from the cache. The second return is false if
	// the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value in the cache with the specified TTL. A zero TTL
	// means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string)
	// Clear removes all values from the cache.
	Clear(ctx context.Context)
	// Stats returns cache statistics.
	Stats() Stats
	// Close releases backend resources.
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64 // successful Get operations
	Misses      int64 // failed Get operations (not found or expired)
	Sets        int64 // Set operations
	Evictions   int64 // expired entries cleaned up
	CurrentSize int   // current number of entries
}

// entry represents a cached value with expiration time.
type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired() bool {
	return !e.expiration.IsZero() && time.Now().After(e.expiration)
}

// memoryCache is an in-memory implementation of Cache.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats
	janitor *janitor
}

// NewMemory creates an in-memory cache. If cleanupInterval is positive, a
// background janitor removes expired entries at that interval; stop it with
// Close.
func NewMemory(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
	}

	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}

	return c
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || e.isExpired() {
		c.stats.Misses++
		metrics.RecordCacheOp("memory", "miss")
		return nil, false
	}

	c.stats.Hits++
	metrics.RecordCacheOp("memory", "hit")
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{value: value, expiration: expiration}
	c.stats.Sets++
	metrics.RecordCacheOp("memory", "set")
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

// deleteExpired removes all expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, e := range c.entries {
		if e.isExpired() {
			delete(c.entries, key)
			count++
		}
	}

	c.stats.Evictions += int64(count)
	return count
}

func (c *memoryCache) Close() error {
	if c.janitor != nil {
		c.janitor.stop <- struct{}{}
	}
	return nil
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor) run(c *memoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// NewNoOp creates a cache that never stores anything, for disabling
// memoization without touching call sites.
func NewNoOp() Cache {
	return &noOpCache{}
}

type noOpCache struct{}

func (c *noOpCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (c *noOpCache) Set(context.Context, string, []byte, time.Duration) {}
func (c *noOpCache) Delete(context.Context, string)                     {}
func (c *noOpCache) Clear(context.Context)                              {}
func (c *noOpCache) Stats() Stats                                       { return Stats{} }
func (c *noOpCache) Close() error                                       { return nil }
