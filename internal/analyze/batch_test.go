// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/pkg/types"
)

type memorySink struct {
	mu      sync.Mutex
	stats   map[string]types.ArticleStatistics
	written map[string]time.Time
}

func newMemorySink() *memorySink {
	return &memorySink{
		stats:   make(map[string]types.ArticleStatistics),
		written: make(map[string]time.Time),
	}
}

func (s *memorySink) Put(_ context.Context, id string, st types.ArticleStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[id] = st
	s.written[id] = time.Now()
	return nil
}

func (s *memorySink) ModTime(id string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.written[id]
	return t, ok, nil
}

func writeArticle(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeAll(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "alpha.wiki", `A.<ref>{{cite book|isbn=0-306-40615-2}}</ref>`)
	writeArticle(t, dir, "beta.txt", `B.<ref>{{cite web|url=http://example.com}}</ref><ref name="x"/>`)
	writeArticle(t, dir, "broken.wiki", "\xff")
	writeArticle(t, dir, "notes.md", `ignored`)

	a := newAnalyzer(t, types.AnalysisConfig{})
	sink := newMemorySink()
	var out bytes.Buffer

	summary, err := a.AnalyzeAll(context.Background(), dir, sink, BatchOptions{Workers: 2}, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, summary.Total())
	assert.True(t, summary.HasFailures())

	require.Contains(t, sink.stats, "alpha")
	require.Contains(t, sink.stats, "beta")
	assert.NotContains(t, sink.stats, "notes")
	assert.Equal(t, 2, sink.stats["beta"].References.All)
	assert.Contains(t, out.String(), "failed  broken")
	assert.Contains(t, out.String(), "analyzed alpha (1 references)")
}

func TestAnalyzeAllSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeArticle(t, dir, "alpha.wiki", `A.<ref>{{cite book|isbn=0-306-40615-2}}</ref>`)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	a := newAnalyzer(t, types.AnalysisConfig{})
	sink := newMemorySink()

	_, err := a.AnalyzeAll(context.Background(), dir, sink, BatchOptions{}, &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := a.AnalyzeAll(context.Background(), dir, sink, BatchOptions{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Analyzed)
	assert.Contains(t, out.String(), "skipped alpha")
}

func TestAnalyzeAllAbortsOnCacheOutage(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "alpha.wiki", `A.<ref>{{cite book|isbn=0-306-40615-2}}</ref>`)

	a := newAnalyzer(t, types.AnalysisConfig{})
	c := cache.New(&brokenStore{cache.NewMemoryStore()})

	_, err := a.AnalyzeAll(context.Background(), dir, newMemorySink(), BatchOptions{Cache: c}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrCacheUnavailable)
}

func TestAnalyzeAllMissingDir(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})
	_, err := a.AnalyzeAll(context.Background(), filepath.Join(t.TempDir(), "nope"), newMemorySink(), BatchOptions{}, &bytes.Buffer{})
	assert.Error(t, err)
}
