// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalysisConfig holds settings for the extraction, classification and
// identity stages. It is loaded once at startup and never mutated.
type AnalysisConfig struct {
	// IdentitySalt namespaces identity hashes to one backing store instance.
	IdentitySalt string `json:"identity_salt" yaml:"identity_salt" mapstructure:"identity_salt"`

	// HashURLs enables the url field as the last identity candidate.
	HashURLs bool `json:"hash_urls" yaml:"hash_urls" mapstructure:"hash_urls"`

	// MaxPersonNumber bounds numbered person parameters (author1..authorN).
	MaxPersonNumber int `json:"max_person_number" yaml:"max_person_number" mapstructure:"max_person_number"`

	// BibliographySections are case-insensitive regular expressions matched
	// against trimmed heading titles.
	BibliographySections []string `json:"bibliography_sections" yaml:"bibliography_sections" mapstructure:"bibliography_sections"`

	// IgnoredLineTemplates are layout templates skipped inside bibliography
	// sections (reflist, refbegin, ...).
	IgnoredLineTemplates []string `json:"ignored_line_templates" yaml:"ignored_line_templates" mapstructure:"ignored_line_templates"`

	// TemplateKinds adds template-name to kind mappings on top of the defaults
	// (e.g. "cite news": "cite_web").
	TemplateKinds map[string]string `json:"template_kinds,omitempty" yaml:"template_kinds,omitempty" mapstructure:"template_kinds"`

	// ParamAliases adds raw-key to canonical-key mappings on top of the defaults.
	ParamAliases map[string]string `json:"param_aliases,omitempty" yaml:"param_aliases,omitempty" mapstructure:"param_aliases"`
}

// CacheBackend selects the identity cache storage.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
	CacheMongo  CacheBackend = "mongo"
)

// CacheConfig holds settings for the identity cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path" mapstructure:"sqlite_path"`

	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	MongoURI        string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database" yaml:"mongo_database" mapstructure:"mongo_database"`
	MongoCollection string `json:"mongo_collection" yaml:"mongo_collection" mapstructure:"mongo_collection"`

	// KeyPrefix is prepended to every key in shared key-value stores.
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" mapstructure:"key_prefix"`

	// Timeout bounds each backend round trip.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// StatsBackend selects where computed statistics are written.
type StatsBackend string

const (
	StatsFile StatsBackend = "file"
	StatsS3   StatsBackend = "s3"
)

// StatsConfig holds settings for the statistics sink.
type StatsConfig struct {
	Backend StatsBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Dir is the output directory for the file backend.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Format is "yaml" or "json" for the file backend.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	S3Endpoint  string `json:"s3_endpoint" yaml:"s3_endpoint" mapstructure:"s3_endpoint"`
	S3Region    string `json:"s3_region" yaml:"s3_region" mapstructure:"s3_region"`
	S3Bucket    string `json:"s3_bucket" yaml:"s3_bucket" mapstructure:"s3_bucket"`
	S3Prefix    string `json:"s3_prefix" yaml:"s3_prefix" mapstructure:"s3_prefix"`
	S3AccessKey string `json:"s3_access_key,omitempty" yaml:"s3_access_key,omitempty" mapstructure:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key,omitempty" yaml:"s3_secret_key,omitempty" mapstructure:"s3_secret_key"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxBodyBytes limits the size of submitted article markup.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LinkCheckConfig holds settings for the URL liveness checker.
type LinkCheckConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// RatePerSecond caps outgoing requests across all workers.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Workers is the number of concurrent probes.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// BatchConfig holds settings for directory-wide analysis runs.
type BatchConfig struct {
	// InputDir contains one article per *.wiki or *.txt file.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// Workers bounds the number of articles analyzed concurrently.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Config groups all configuration sections.
type Config struct {
	Analysis  AnalysisConfig  `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Stats     StatsConfig     `json:"stats" yaml:"stats" mapstructure:"stats"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	LinkCheck LinkCheckConfig `json:"linkcheck" yaml:"linkcheck" mapstructure:"linkcheck"`
	Batch     BatchConfig     `json:"batch" yaml:"batch" mapstructure:"batch"`
}
