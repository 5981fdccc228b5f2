// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the analyzer and the identity cache over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/analyze"
	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/pkg/types"
)

const defaultMaxBodyBytes = 8 << 20

// Options wires the server's collaborators. Cache and Gatherer are optional.
type Options struct {
	Analyzer     *analyze.Analyzer
	Cache        *cache.Cache
	Logger       *zap.Logger
	Gatherer     prometheus.Gatherer
	MaxBodyBytes int64
}

type server struct {
	analyzer *analyze.Analyzer
	cache    *cache.Cache
	logger   *zap.Logger
	maxBody  int64
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Markup    string `json:"markup"`
	CheckURLs bool   `json:"check_urls"`
	Detailed  bool   `json:"detailed"`
	Resolve   bool   `json:"resolve"`
}

// ReferenceRequest is the body of POST /v1/references. When ExternalID is
// set the identity is recorded in the cache; otherwise it is looked up.
type ReferenceRequest struct {
	Template   string `json:"template"`
	ExternalID string `json:"external_id,omitempty"`
}

// ReferenceResponse describes one reference's identity.
type ReferenceResponse struct {
	Reference       *types.NormalizedReference `json:"reference"`
	Anomalies       []types.Anomaly            `json:"anomalies,omitempty"`
	Identity        string                     `json:"identity,omitempty"`
	WebsiteIdentity string                     `json:"website_identity,omitempty"`
	HasHash         bool                       `json:"has_hash"`
	ExternalID      string                     `json:"external_id,omitempty"`
	Inserted        bool                       `json:"inserted,omitempty"`
}

// New returns the gin engine serving the wikicite API.
func New(opts Options) *gin.Engine {
	s := &server{
		analyzer: opts.Analyzer,
		cache:    opts.Cache,
		logger:   opts.Logger,
		maxBody:  opts.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBodyBytes
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	v1.Use(s.limitBody)
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/references", s.handleReference)
	return router
}

func (s *server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
	c.Next()
}

func (s *server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if !s.bind(c, &req) {
		return
	}

	res, err := s.analyzer.AnalyzeDetailed(req.Markup, analyze.Options{CheckURLs: req.CheckURLs})
	if err != nil {
		s.fail(c, err)
		return
	}
	if req.Resolve {
		if s.cache == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no identity cache configured"})
			return
		}
		if _, err := analyze.Resolve(c.Request.Context(), res, s.cache); err != nil {
			s.fail(c, err)
			return
		}
	}

	if req.Detailed {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusOK, res.Statistics)
}

func (s *server) handleReference(c *gin.Context) {
	var req ReferenceRequest
	if !s.bind(c, &req) {
		return
	}

	ref, anomalies, err := s.analyzer.NormalizeTemplate(req.Template)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	resp := ReferenceResponse{Reference: ref, Anomalies: anomalies}
	h := s.analyzer.Hasher()
	resp.Identity, resp.HasHash = h.Identity(ref)
	resp.WebsiteIdentity, _ = h.WebsiteIdentity(ref)

	if s.cache != nil && resp.HasHash {
		ctx := c.Request.Context()
		if req.ExternalID != "" {
			resp.ExternalID, resp.Inserted, err = s.cache.Insert(ctx, resp.Identity, req.ExternalID)
		} else {
			resp.ExternalID, _, err = s.cache.Lookup(ctx, resp.Identity)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analyze.ErrParseFailure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, cache.ErrCacheUnavailable):
		s.logger.Error("identity cache unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity cache unavailable"})
	default:
		s.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
