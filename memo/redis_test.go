// SPDX-License-Identifier: MIT

package memo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis starts an in-process Redis server and returns a cache
// wired to it.
func setupMiniRedis(t *testing.T, prefix string) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cache := &RedisCache{
		client: client,
		prefix: prefix,
		logger: zerolog.Nop(),
	}
	t.Cleanup(func() { _ = cache.Close() })

	return mr, cache
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	_, cache := setupMiniRedis(t, "")

	cache.Set(ctx, "test-key", []byte("test-value"), 5*time.Minute)

	val, found := cache.Get(ctx, "test-key")
	require.True(t, found)
	assert.Equal(t, []byte("test-value"), val)
}

func TestRedis_Miss(t *testing.T) {
	ctx := context.Background()
	_, cache := setupMiniRedis(t, "")

	_, found := cache.Get(ctx, "absent")
	assert.False(t, found)
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestRedis_Expiration(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t, "")

	cache.Set(ctx, "shortlived", []byte("v"), time.Second)

	_, found := cache.Get(ctx, "shortlived")
	require.True(t, found)

	mr.FastForward(2 * time.Second)

	_, found = cache.Get(ctx, "shortlived")
	assert.False(t, found)
}

func TestRedis_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t, "genutil")

	cache.Set(ctx, "k", []byte("v"), time.Minute)

	// The stored key carries the prefix with the ":" separator.
	assert.True(t, mr.Exists("genutil:k"))

	val, found := cache.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func TestRedis_Delete(t *testing.T) {
	ctx := context.Background()
	_, cache := setupMiniRedis(t, "")

	cache.Set(ctx, "k", []byte("v"), time.Minute)
	cache.Delete(ctx, "k")

	_, found := cache.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedis_Clear(t *testing.T) {
	ctx := context.Background()
	_, cache := setupMiniRedis(t, "")

	cache.Set(ctx, "k1", []byte("v"), time.Minute)
	cache.Set(ctx, "k2", []byte("v"), time.Minute)
	cache.Clear(ctx)

	assert.Equal(t, 0, cache.Stats().CurrentSize)
}

func TestRedis_Ping(t *testing.T) {
	_, cache := setupMiniRedis(t, "")
	assert.NoError(t, cache.Ping(context.Background()))
}
