// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	v := map[string]int{"all": 3}

	tests := []struct {
		format string
		want   string
	}{
		{"", "all: 3\n"},
		{"yaml", "all: 3\n"},
		{"json", "{\n  \"all\": 3\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeOutput(&buf, tt.format, v))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	err := writeOutput(&bytes.Buffer{}, "xml", v)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestReadArticle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wiki")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))

	got, err := readArticle(strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readArticle(strings.NewReader("from stdin"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readArticle(nil, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = readArticle(nil, []string{filepath.Join(t.TempDir(), "missing.wiki")})
	assert.Error(t, err)
}
