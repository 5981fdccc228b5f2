// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wikicite/pkg/types"
)

// Output formats of FileSink.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FileSink writes one <dir>/<id>.<format> file per article.
type FileSink struct {
	dir    string
	format string
}

// NewFileSink creates dir if needed. An empty format means yaml.
func NewFileSink(dir, format string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("file sink requires a directory")
	}
	switch format {
	case "":
		format = FormatYAML
	case FormatYAML, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported stats format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating stats directory: %w", err)
	}
	return &FileSink{dir: dir, format: format}, nil
}

// Path returns the file the statistics of articleID are written to.
func (s *FileSink) Path(articleID string) string {
	return filepath.Join(s.dir, articleID+"."+s.format)
}

// Put writes the statistics through a temporary file and a rename so
// readers never see a partial file.
func (s *FileSink) Put(_ context.Context, articleID string, st types.ArticleStatistics) error {
	if err := validateID(articleID); err != nil {
		return err
	}
	data, err := s.marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling statistics: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+articleID+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing statistics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(articleID)); err != nil {
		return fmt.Errorf("renaming statistics file: %w", err)
	}
	return nil
}

// Get reads back the statistics of articleID.
func (s *FileSink) Get(articleID string) (types.ArticleStatistics, error) {
	var st types.ArticleStatistics
	if err := validateID(articleID); err != nil {
		return st, err
	}
	data, err := os.ReadFile(s.Path(articleID))
	if err != nil {
		return st, fmt.Errorf("reading statistics: %w", err)
	}
	if s.format == FormatJSON {
		err = json.Unmarshal(data, &st)
	} else {
		err = yaml.Unmarshal(data, &st)
	}
	if err != nil {
		return st, fmt.Errorf("parsing statistics %s: %w", s.Path(articleID), err)
	}
	return st, nil
}

// ModTime returns when the statistics of articleID were last written.
func (s *FileSink) ModTime(articleID string) (time.Time, bool, error) {
	if err := validateID(articleID); err != nil {
		return time.Time{}, false, err
	}
	info, err := os.Stat(s.Path(articleID))
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

func (s *FileSink) marshal(st types.ArticleStatistics) ([]byte, error) {
	if s.format == FormatJSON {
		return json.MarshalIndent(st, "", "  ")
	}
	return yaml.Marshal(st)
}
