// SPDX-License-Identifier: MIT

package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/genutil/log"
)

// Memoizer caches the results of keyed function calls in a Cache backend.
// Values are JSON-encoded, so V must round-trip through encoding/json.
// Concurrent misses for the same key are collapsed into a single underlying
// call. Errors are never cached.
type Memoizer[V any] struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewMemoizer creates a memoizer storing results in cache with the given TTL.
func NewMemoizer[V any](cache Cache, ttl time.Duration) *Memoizer[V] {
	return &Memoizer[V]{cache: cache, ttl: ttl}
}

// Do returns the cached value for key, or runs fn and caches its result.
func (m *Memoizer[V]) Do(ctx context.Context, key string, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := m.lookup(ctx, key); ok {
		return v, nil
	}

	result, err, _ := m.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the cache while this call
		// waited on the flight group.
		if v, ok := m.lookup(ctx, key); ok {
			return v, nil
		}

		v, err := fn(ctx)
		if err != nil {
			return v, err
		}

		data, err := json.Marshal(v)
		if err != nil {
			// The value is still valid for this caller; it just cannot be cached.
			logger := log.WithComponent("memo")
			logger.Warn().Err(err).
				Str(log.FieldKey, key).
				Msg("memoized value is not JSON-encodable, skipping cache")
			return v, nil
		}
		m.cache.Set(ctx, key, data, m.ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, fmt.Errorf("memoized call %q: %w", key, err)
	}
	return result.(V), nil
}

// Forget removes a cached result, forcing the next Do to recompute.
func (m *Memoizer[V]) Forget(ctx context.Context, key string) {
	m.cache.Delete(ctx, key)
}

func (m *Memoizer[V]) lookup(ctx context.Context, key string) (V, bool) {
	var v V
	data, ok := m.cache.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		logger := log.WithComponent("memo")
		logger.Warn().Err(err).
			Str(log.FieldKey, key).
			Msg("cached value failed to decode, treating as miss")
		return v, false
	}
	return v, true
}
