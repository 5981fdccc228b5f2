// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package statsstore persists article statistics to a local directory or
// an S3-compatible bucket.
package statsstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/wikicite/pkg/types"
)

// ErrInvalidArticleID is returned for ids that are empty or contain path
// separators.
var ErrInvalidArticleID = errors.New("invalid article id")

// Sink stores the statistics of one article under its id.
type Sink interface {
	Put(ctx context.Context, articleID string, s types.ArticleStatistics) error
}

// Open returns the sink selected by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg types.StatsConfig) (Sink, error) {
	switch cfg.Backend {
	case "", types.StatsFile:
		return NewFileSink(cfg.Dir, cfg.Format)
	case types.StatsS3:
		return NewS3Sink(ctx, S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown stats backend %q", cfg.Backend)
	}
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidArticleID, id)
	}
	return nil
}
