// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/internal/metrics"
	"github.com/pdiddy/wikicite/pkg/types"
)

type storeFactory func(t *testing.T) Store

func backends(t *testing.T) map[string]storeFactory {
	t.Helper()
	factories := map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache", "identities.db"))
			require.NoError(t, err)
			return s
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			s, err := NewRedisStore(context.Background(), RedisOptions{Addr: mr.Addr(), Prefix: "wc:"})
			require.NoError(t, err)
			return s
		},
	}
	if uri := os.Getenv("WIKICITE_TEST_MONGO_URI"); uri != "" {
		factories["mongo"] = func(t *testing.T) Store {
			s, err := NewMongoStore(context.Background(), MongoOptions{
				URI:        uri,
				Database:   "wikicite_test",
				Collection: fmt.Sprintf("identities_%d", os.Getpid()),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Flush(context.Background()) })
			return s
		}
	}
	return factories
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, "h1")
			require.NoError(t, err)
			assert.False(t, ok)

			v, inserted, err := s.SetNX(ctx, "h1", "Q1")
			require.NoError(t, err)
			assert.True(t, inserted)
			assert.Equal(t, "Q1", v)

			v, inserted, err = s.SetNX(ctx, "h1", "Q2")
			require.NoError(t, err)
			assert.False(t, inserted)
			assert.Equal(t, "Q1", v, "first writer wins")

			v, ok, err = s.Get(ctx, "h1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Q1", v)

			require.NoError(t, s.Delete(ctx, "h1"))
			require.NoError(t, s.Delete(ctx, "h1"), "deleting a missing key")
			_, ok, err = s.Get(ctx, "h1")
			require.NoError(t, err)
			assert.False(t, ok)

			_, _, err = s.SetNX(ctx, "a", "Q10")
			require.NoError(t, err)
			_, _, err = s.SetNX(ctx, "b", "Q11")
			require.NoError(t, err)
			require.NoError(t, s.Flush(ctx))
			for _, k := range []string{"a", "b"} {
				_, ok, err := s.Get(ctx, k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}
		})
	}
}

func TestConcurrentInsertOneWinner(t *testing.T) {
	ctx := context.Background()
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := New(factory(t))
			defer c.Close()

			const writers = 16
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				winners  int
				returned = make(map[string]int)
			)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id, inserted, err := c.Insert(ctx, "same-hash", fmt.Sprintf("Q%d", i))
					assert.NoError(t, err)
					mu.Lock()
					defer mu.Unlock()
					if inserted {
						winners++
					}
					returned[id]++
				}(i)
			}
			wg.Wait()

			assert.Equal(t, 1, winners)
			assert.Len(t, returned, 1, "every writer sees the same id")
			for _, n := range returned {
				assert.Equal(t, writers, n)
			}
		})
	}
}

func TestCacheRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := New(NewMemoryStore(), WithMetrics(m))

	_, ok, err := c.Lookup(ctx, "h")
	require.NoError(t, err)
	assert.False(t, ok)

	_, inserted, err := c.Insert(ctx, "h", "Q1")
	require.NoError(t, err)
	assert.True(t, inserted)

	id, inserted, err := c.Insert(ctx, "h", "Q2")
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "Q1", id)

	id, ok, err = c.Lookup(ctx, "h")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q1", id)

	expected := `
# HELP wikicite_cache_inserts_total Identity cache inserts, by result.
# TYPE wikicite_cache_inserts_total counter
wikicite_cache_inserts_total{result="conflict"} 1
wikicite_cache_inserts_total{result="inserted"} 1
# HELP wikicite_cache_lookups_total Identity cache lookups, by result.
# TYPE wikicite_cache_lookups_total counter
wikicite_cache_lookups_total{result="hit"} 1
wikicite_cache_lookups_total{result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"wikicite_cache_lookups_total", "wikicite_cache_inserts_total"))
}

func TestCacheRejectsEmptyKeys(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	_, _, err := c.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, _, err = c.Insert(ctx, "h", "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, _, err = c.Insert(ctx, "", "Q1")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, c.Delete(ctx, ""), ErrEmptyKey)
}

type failingStore struct{ MemoryStore }

var errBackendDown = errors.New("connection refused")

func (*failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackendDown
}

func (*failingStore) SetNX(context.Context, string, string) (string, bool, error) {
	return "", false, errBackendDown
}

func TestCacheWrapsBackendFailures(t *testing.T) {
	ctx := context.Background()
	c := New(&failingStore{})

	_, _, err := c.Lookup(ctx, "h")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	assert.ErrorIs(t, err, errBackendDown)

	_, _, err = c.Insert(ctx, "h", "Q1")
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), types.CacheConfig{Backend: types.CacheRedis, RedisAddr: addr})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestRedisFlushKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("other:key", "keep"))

	s, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr(), Prefix: "wc:"})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.SetNX(ctx, "h", "Q1")
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	assert.False(t, mr.Exists("wc:h"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisFlushPrefixWithGlobCharacters(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("wxc:key", "keep"))
	require.NoError(t, mr.Set("wac-extra:key", "keep"))

	s, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr(), Prefix: "w?[c]*:"})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.SetNX(ctx, "h", "Q1")
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	assert.False(t, mr.Exists("w?[c]*:h"))
	assert.True(t, mr.Exists("wxc:key"))
	assert.True(t, mr.Exists("wac-extra:key"))
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"wikicite:identity:", "wikicite:identity:"},
		{"a*b", `a\*b`},
		{"a?b", `a\?b`},
		{"[x]", `\[x\]`},
		{`a\b`, `a\\b`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeGlob(tt.in), tt.in)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     types.CacheConfig
		wantErr bool
	}{
		{name: "default memory", cfg: types.CacheConfig{}},
		{name: "sqlite", cfg: types.CacheConfig{Backend: types.CacheSQLite, SQLitePath: filepath.Join(t.TempDir(), "c.db")}},
		{name: "sqlite without path", cfg: types.CacheConfig{Backend: types.CacheSQLite}, wantErr: true},
		{name: "mongo without uri", cfg: types.CacheConfig{Backend: types.CacheMongo}, wantErr: true},
		{name: "unknown", cfg: types.CacheConfig{Backend: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenStore(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
