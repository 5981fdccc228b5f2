// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads wikicite configuration through viper: defaults,
// then the config file, then WIKICITE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/normalize"
	"github.com/pdiddy/wikicite/internal/segment"
	"github.com/pdiddy/wikicite/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g.
// WIKICITE_CACHE_BACKEND for cache.backend.
const EnvPrefix = "WIKICITE"

// BindEnv enables environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// SetDefaults registers a default for every configuration key. Keys without
// a default are invisible to environment overrides during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("analysis.identity_salt", "")
	v.SetDefault("analysis.hash_urls", false)
	v.SetDefault("analysis.max_person_number", normalize.DefaultMaxPersonNumber)
	v.SetDefault("analysis.bibliography_sections", segment.DefaultSectionPatterns)
	v.SetDefault("analysis.ignored_line_templates", segment.DefaultIgnoredTemplates)
	v.SetDefault("analysis.template_kinds", map[string]string{})
	v.SetDefault("analysis.param_aliases", map[string]string{})

	v.SetDefault("cache.backend", string(types.CacheMemory))
	v.SetDefault("cache.sqlite_path", ".wikicite/identities.db")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.mongo_uri", "")
	v.SetDefault("cache.mongo_database", "wikicite")
	v.SetDefault("cache.mongo_collection", "identities")
	v.SetDefault("cache.key_prefix", "wikicite:identity:")
	v.SetDefault("cache.timeout", 5*time.Second)

	v.SetDefault("stats.backend", string(types.StatsFile))
	v.SetDefault("stats.dir", "stats")
	v.SetDefault("stats.format", "yaml")
	v.SetDefault("stats.s3_endpoint", "")
	v.SetDefault("stats.s3_region", "us-east-1")
	v.SetDefault("stats.s3_bucket", "")
	v.SetDefault("stats.s3_prefix", "")
	v.SetDefault("stats.s3_access_key", "")
	v.SetDefault("stats.s3_secret_key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body_bytes", int64(8<<20))

	v.SetDefault("linkcheck.timeout", 10*time.Second)
	v.SetDefault("linkcheck.user_agent", "wikicite-linkcheck/1.0")
	v.SetDefault("linkcheck.rate_per_second", 5.0)
	v.SetDefault("linkcheck.max_retries", 3)
	v.SetDefault("linkcheck.workers", 4)

	v.SetDefault("batch.input_dir", "articles")
	v.SetDefault("batch.workers", 0)
}

// Load applies defaults to v and decodes it into a validated Config.
func Load(v *viper.Viper) (types.Config, error) {
	SetDefaults(v)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and bounds.
func Validate(cfg types.Config) error {
	switch cfg.Cache.Backend {
	case types.CacheMemory, types.CacheSQLite, types.CacheRedis, types.CacheMongo:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", cfg.Cache.Backend)
	}
	switch cfg.Stats.Backend {
	case types.StatsFile, types.StatsS3:
	default:
		return fmt.Errorf("stats.backend: unknown backend %q", cfg.Stats.Backend)
	}
	switch cfg.Stats.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("stats.format: must be yaml or json, got %q", cfg.Stats.Format)
	}
	if cfg.Analysis.MaxPersonNumber < 1 {
		return fmt.Errorf("analysis.max_person_number: must be at least 1, got %d", cfg.Analysis.MaxPersonNumber)
	}
	if _, err := zap.ParseAtomicLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Batch.Workers < 0 || cfg.LinkCheck.Workers < 0 {
		return fmt.Errorf("worker counts must not be negative")
	}
	return nil
}
