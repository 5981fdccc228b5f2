// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache maps reference identity hashes to external item ids.
// Entries are unique per hash, never expire, and are only removed by the
// administrative Delete and Flush operations. On an insert conflict the
// value already stored wins and is returned to the caller.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/metrics"
)

var (
	// ErrCacheUnavailable wraps every backing-store failure. Callers that
	// need deduplication must treat it as fatal.
	ErrCacheUnavailable = errors.New("identity cache unavailable")

	// ErrEmptyKey is returned for an empty hash or external id.
	ErrEmptyKey = errors.New("empty cache key or value")
)

// Store is a key-value backend with set-if-absent semantics.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetNX stores value under key unless key exists. It returns the value
	// stored after the call and whether this call stored it.
	SetNX(ctx context.Context, key, value string) (string, bool, error)

	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
	Close() error
}

// Cache wraps a Store with the identity cache contract.
type Cache struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics records lookups and inserts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// New wraps store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{store: store, logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(parent, c.timeout)
	}
	return context.WithCancel(parent)
}

// Lookup returns the external id stored for hash.
func (c *Cache) Lookup(ctx context.Context, hash string) (string, bool, error) {
	if hash == "" {
		return "", false, ErrEmptyKey
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	id, ok, err := c.store.Get(ctx, hash)
	if err != nil {
		c.metrics.CacheLookup(metrics.ResultError)
		c.logger.Error("cache lookup failed", zap.String("hash", hash), zap.Error(err))
		return "", false, fmt.Errorf("looking up %s: %w: %w", hash, ErrCacheUnavailable, err)
	}
	if ok {
		c.metrics.CacheLookup(metrics.ResultHit)
	} else {
		c.metrics.CacheLookup(metrics.ResultMiss)
	}
	return id, ok, nil
}

// Insert records hash → externalID. When hash is already mapped the stored
// id is returned with inserted=false; the caller must use that id.
func (c *Cache) Insert(ctx context.Context, hash, externalID string) (id string, inserted bool, err error) {
	if hash == "" || externalID == "" {
		return "", false, ErrEmptyKey
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	id, inserted, err = c.store.SetNX(ctx, hash, externalID)
	if err != nil {
		c.metrics.CacheInsert(metrics.ResultError)
		c.logger.Error("cache insert failed", zap.String("hash", hash), zap.Error(err))
		return "", false, fmt.Errorf("inserting %s: %w: %w", hash, ErrCacheUnavailable, err)
	}
	if inserted {
		c.metrics.CacheInsert(metrics.ResultInserted)
	} else {
		c.metrics.CacheInsert(metrics.ResultConflict)
		c.logger.Debug("cache insert conflict",
			zap.String("hash", hash),
			zap.String("wanted", externalID),
			zap.String("existing", id),
		)
	}
	return id, inserted, nil
}

// Delete removes one entry. Deleting a missing entry is not an error.
func (c *Cache) Delete(ctx context.Context, hash string) error {
	if hash == "" {
		return ErrEmptyKey
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	if err := c.store.Delete(ctx, hash); err != nil {
		return fmt.Errorf("deleting %s: %w: %w", hash, ErrCacheUnavailable, err)
	}
	c.logger.Info("cache entry deleted", zap.String("hash", hash))
	return nil
}

// Flush removes every entry.
func (c *Cache) Flush(ctx context.Context) error {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	if err := c.store.Flush(ctx); err != nil {
		return fmt.Errorf("flushing: %w: %w", ErrCacheUnavailable, err)
	}
	c.logger.Warn("cache flushed")
	return nil
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.store.Close()
}
