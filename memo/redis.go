// SPDX-License-Identifier: MIT

package memo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/metrics"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr      string // server address (host:port)
	Password  string // optional
	DB        int    // database number
	KeyPrefix string // optional prefix applied to every key
}

// RedisCache is a Redis-backed implementation of Cache.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

const redisKeySeparator = ":"

// NewRedis creates a Redis-backed cache and verifies connectivity.
func NewRedis(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger := log.WithComponent("memo")
	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis cache")

	return &RedisCache{
		client: client,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}, nil
}

func (c *RedisCache) fullKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + redisKeySeparator + key
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		c.stats.misses.Add(1)
		metrics.RecordCacheOp("redis", "miss")
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("redis get failed")
		c.stats.misses.Add(1)
		metrics.RecordCacheOp("redis", "miss")
		return nil, false
	}

	c.stats.hits.Add(1)
	metrics.RecordCacheOp("redis", "hit")
	return val, true
}

// Set stores a value in Redis with TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.fullKey(key), value, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("redis set failed")
		return
	}
	c.stats.sets.Add(1)
	metrics.RecordCacheOp("redis", "set")
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.fullKey(key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("redis delete failed")
	}
}

// Clear flushes the current Redis database.
func (c *RedisCache) Clear(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis flush failed")
	}
}

// Stats returns cache statistics. CurrentSize is the key count of the
// current database, not just prefixed keys.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis dbsize failed")
		size = 0
	}

	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: int(size),
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
