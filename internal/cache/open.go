// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"

	"github.com/pdiddy/wikicite/pkg/types"
)

// OpenStore creates the Store selected by cfg.Backend. An empty backend
// means memory.
func OpenStore(ctx context.Context, cfg types.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.CacheMemory:
		return NewMemoryStore(), nil
	case types.CacheSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite cache requires sqlite_path")
		}
		return NewSQLiteStore(cfg.SQLitePath)
	case types.CacheRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case types.CacheMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache requires mongo_uri")
		}
		return NewMongoStore(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Open creates the configured Store and wraps it in a Cache.
func Open(ctx context.Context, cfg types.CacheConfig, opts ...Option) (*Cache, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w: %w", cfg.Backend, ErrCacheUnavailable, err)
	}
	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}
	return New(store, opts...), nil
}
