// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed
// contents are the value. Secrets only fill configuration values that are
// still empty, so the config file and environment take precedence.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/wikicite/pkg/types"
)

// Recognized key files.
const (
	KeyRedisPassword = "redis-password"
	KeyMongoURI      = "mongo-uri"
	KeyS3AccessKey   = "s3-access-key"
	KeyS3SecretKey   = "s3-secret-key"
	KeyIdentitySalt  = "identity-salt"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies recognized secrets into empty fields of cfg and returns the
// keys it used, sorted.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	targets := map[string]*string{
		KeyRedisPassword: &cfg.Cache.RedisPassword,
		KeyMongoURI:      &cfg.Cache.MongoURI,
		KeyS3AccessKey:   &cfg.Stats.S3AccessKey,
		KeyS3SecretKey:   &cfg.Stats.S3SecretKey,
		KeyIdentitySalt:  &cfg.Analysis.IdentitySalt,
	}

	var applied []string
	for key, field := range targets {
		v, ok := secrets[key]
		if !ok || *field != "" {
			continue
		}
		*field = v
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return applied
}
