// SPDX-License-Identifier: MIT

package memo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/metrics"
)

// BadgerCache is a persistent on-disk implementation of Cache backed by
// badger. Expiration uses badger's native TTL support, so entries survive
// process restarts with their deadlines intact.
type BadgerCache struct {
	db     *badger.DB
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewBadger opens (or creates) a badger store in dir.
func NewBadger(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	logger := log.WithComponent("memo")
	logger.Info().Str(log.FieldPath, dir).Msg("opened badger cache")

	return &BadgerCache{db: db, logger: logger}, nil
}

// Get retrieves a value from the store.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		c.stats.misses.Add(1)
		metrics.RecordCacheOp("badger", "miss")
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("badger get failed")
		c.stats.misses.Add(1)
		metrics.RecordCacheOp("badger", "miss")
		return nil, false
	}

	c.stats.hits.Add(1)
	metrics.RecordCacheOp("badger", "hit")
	return value, true
}

// Set stores a value with TTL. A zero TTL stores the entry without expiry.
func (c *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("badger set failed")
		return
	}
	c.stats.sets.Add(1)
	metrics.RecordCacheOp("badger", "set")
}

// Delete removes a value from the store.
func (c *BadgerCache) Delete(_ context.Context, key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str(log.FieldKey, key).Msg("badger delete failed")
	}
}

// Clear drops all data from the store.
func (c *BadgerCache) Clear(_ context.Context) {
	if err := c.db.DropAll(); err != nil {
		c.logger.Warn().Err(err).Msg("badger drop failed")
	}
}

// Stats returns cache statistics. CurrentSize walks the key space and counts
// non-expired entries.
func (c *BadgerCache) Stats() Stats {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("badger key count failed")
	}

	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: count,
	}
}

// Close closes the underlying store.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
