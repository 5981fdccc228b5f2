// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkcheck probes URLs for liveness. It sits outside the citation
// engine: callers hand it the URL list found in an article's statistics.
package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/wikicite/pkg/types"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRate       = 5.0
	defaultMaxRetries = 3
	defaultWorkers    = 4
	defaultUserAgent  = "wikicite-linkcheck/1.0"
)

// Result is the outcome of one probe.
type Result struct {
	URL    string `json:"url" yaml:"url"`
	Status int    `json:"status,omitempty" yaml:"status,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Alive reports a 2xx or 3xx status.
func (r Result) Alive() bool {
	return r.Error == "" && r.Status >= 200 && r.Status < 400
}

// Checker probes URLs with a shared rate limit.
type Checker struct {
	client     *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxRetries int
	workers    int
	logger     *zap.Logger
}

// New builds a Checker from cfg; zero values take defaults.
func New(cfg types.LinkCheckConfig, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = defaultRate
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Checker{
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		userAgent:  ua,
		maxRetries: retries,
		workers:    workers,
		logger:     logger,
	}
}

// Check probes one URL with HEAD, falling back to GET when the server
// rejects HEAD.
func (c *Checker) Check(ctx context.Context, url string) Result {
	res := Result{URL: url}
	status, err := c.probe(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		res.Error = err.Error()
		c.logger.Debug("link check failed", zap.String("url", url), zap.Error(err))
		return res
	}
	res.Status = status
	return res
}

// CheckAll probes urls concurrently. Results keep the order of urls.
func (c *Checker) CheckAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = c.Check(ctx, u)
			return nil
		})
	}
	g.Wait()
	return results
}

func (c *Checker) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := doWithRetry(ctx, c.client, c.limiter, req, c.maxRetries)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}
