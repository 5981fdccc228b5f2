// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/pkg/types"
)

// articleExts are the file suffixes treated as article markup.
var articleExts = []string{".wiki", ".txt"}

// Sink receives the statistics of each analyzed article.
type Sink interface {
	Put(ctx context.Context, articleID string, s types.ArticleStatistics) error
}

// ModTimer is implemented by sinks that can tell when an article's
// statistics were last written. Batch runs skip articles whose source is
// not newer than their statistics.
type ModTimer interface {
	ModTime(articleID string) (time.Time, bool, error)
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Analyzed int
	Skipped  int
	Failed   int
}

// Total returns the number of articles processed.
func (s BatchSummary) Total() int {
	return s.Analyzed + s.Skipped + s.Failed
}

// HasFailures reports whether any article failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// BatchOptions controls a batch run.
type BatchOptions struct {
	Options

	// Workers bounds concurrent articles; zero means GOMAXPROCS.
	Workers int

	// Cache, when set, resolves identities for every article. A cache
	// outage aborts the whole run.
	Cache *cache.Cache
}

// AnalyzeAll analyzes every article file in dir and writes statistics to
// sink. Per-article failures are counted and reported on w; only a cache
// outage or an unreadable directory stops the run.
func (a *Analyzer) AnalyzeAll(ctx context.Context, dir string, sink Sink, opts BatchOptions, w io.Writer) (BatchSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isArticle(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		summary BatchSummary
	)
	report := func(field *int, format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		*field++
		fmt.Fprintf(w, format, args...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			id := articleID(path)

			changed, err := hasChanged(path, id, sink)
			if err != nil {
				report(&summary.Failed, "failed  %s: %v\n", id, err)
				return nil
			}
			if !changed {
				report(&summary.Skipped, "skipped %s\n", id)
				return nil
			}

			n, err := a.analyzeFile(gctx, path, id, sink, opts)
			if errors.Is(err, cache.ErrCacheUnavailable) {
				report(&summary.Failed, "failed  %s: %v\n", id, err)
				return err
			}
			if err != nil {
				report(&summary.Failed, "failed  %s: %v\n", id, err)
				return nil
			}
			report(&summary.Analyzed, "analyzed %s (%d references)\n", id, n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, path, id string, sink Sink, opts BatchOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	markup, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading article %s: %w", path, err)
	}

	res, err := a.AnalyzeDetailed(string(markup), opts.Options)
	if err != nil {
		return 0, err
	}
	if opts.Cache != nil {
		if _, err := Resolve(ctx, res, opts.Cache); err != nil {
			return 0, err
		}
	}
	if err := sink.Put(ctx, id, res.Statistics); err != nil {
		return 0, fmt.Errorf("writing statistics: %w", err)
	}
	return res.Statistics.References.All, nil
}

// hasChanged reports whether the article file is newer than its stored
// statistics. Sinks that cannot report modification times always re-run.
func hasChanged(path, id string, sink Sink) (bool, error) {
	mt, ok := sink.(ModTimer)
	if !ok {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat article %s: %w", path, err)
	}
	written, exists, err := mt.ModTime(id)
	if err != nil {
		return false, fmt.Errorf("stat statistics %s: %w", id, err)
	}
	if !exists {
		return true, nil
	}
	return info.ModTime().After(written), nil
}

func isArticle(name string) bool {
	for _, ext := range articleExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func articleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
