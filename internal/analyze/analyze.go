// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze is the entry point of the citation engine. It runs the
// parser, segmenter, normalizer, classifier, extractor and hasher over one
// article and folds the result into statistics.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/internal/classify"
	"github.com/pdiddy/wikicite/internal/identifier"
	"github.com/pdiddy/wikicite/internal/identity"
	"github.com/pdiddy/wikicite/internal/metrics"
	"github.com/pdiddy/wikicite/internal/normalize"
	"github.com/pdiddy/wikicite/internal/segment"
	"github.com/pdiddy/wikicite/internal/stats"
	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// ErrParseFailure is returned when the article markup cannot be parsed.
// No partial statistics are returned with it.
var ErrParseFailure = errors.New("parse failure")

// Options controls one analysis call.
type Options struct {
	// CheckURLs asks for the distinct URL list in the statistics.
	CheckURLs bool
}

// Analyzer holds the immutable tables built from configuration. It is safe
// for concurrent use.
type Analyzer struct {
	segmenter  *segment.Segmenter
	normalizer *normalize.Normalizer
	extractor  *identifier.Extractor
	hasher     *identity.Hasher
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. Anomalies are logged at debug level and
// unit-local failures at warn level.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithMetrics records every analyzed article on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// New builds an Analyzer from cfg.
func New(cfg types.AnalysisConfig, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{logger: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}

	var err error
	if a.segmenter, err = segment.New(cfg); err != nil {
		return nil, fmt.Errorf("building segmenter: %w", err)
	}
	if a.normalizer, err = normalize.New(cfg); err != nil {
		return nil, fmt.Errorf("building normalizer: %w", err)
	}
	a.extractor = identifier.New(a.logger)
	a.hasher = identity.New(cfg.IdentitySalt, cfg.HashURLs)
	return a, nil
}

// Hasher returns the identity hasher used by the analyzer.
func (a *Analyzer) Hasher() *identity.Hasher { return a.hasher }

// Analyze returns the statistics of one article.
func (a *Analyzer) Analyze(markup string, opts Options) (types.ArticleStatistics, error) {
	res, err := a.AnalyzeDetailed(markup, opts)
	if err != nil {
		return types.ArticleStatistics{}, err
	}
	return res.Statistics, nil
}

// AnalyzeDetailed returns every analyzed reference with the statistics.
func (a *Analyzer) AnalyzeDetailed(markup string, opts Options) (*types.ArticleAnalysis, error) {
	doc, err := wikitext.Parse(markup)
	if err != nil {
		a.metrics.ParseFailure()
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	units := a.segmenter.Segment(doc)
	refs := make([]types.AnalyzedReference, len(units))
	for i, u := range units {
		refs[i] = a.analyzeUnit(u)
	}
	a.metrics.ObserveArticle(refs)

	return &types.ArticleAnalysis{
		References: refs,
		Statistics: stats.Aggregate(refs, a.normalizer, stats.Options{CheckURLs: opts.CheckURLs}),
	}, nil
}

// NormalizeTemplate parses markup holding one template invocation and
// returns its normalized reference with identifiers cleaned.
func (a *Analyzer) NormalizeTemplate(markup string) (*types.NormalizedReference, []types.Anomaly, error) {
	nodes, err := wikitext.ParseFragment(markup)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	tpls := wikitext.Templates(nodes)
	if len(tpls) == 0 {
		return nil, nil, fmt.Errorf("no template in %q", markup)
	}
	ref, anomalies := a.normalizer.Normalize(tpls[0])
	anomalies = append(anomalies, a.extractor.NormalizeIdentifiers(ref)...)
	return ref, anomalies, nil
}

func (a *Analyzer) analyzeUnit(u types.RawReferenceUnit) types.AnalyzedReference {
	r := types.AnalyzedReference{
		Unit:   u,
		Facets: classify.Facets(u, a.normalizer),
	}

	if u.Malformed {
		r.Failed = true
		r.Error = "unterminated markup"
		r.Anomalies = []types.Anomaly{{Kind: types.AnomalyMalformedUnit, Detail: excerpt(u.Text)}}
		a.logger.Warn("reference unit could not be classified",
			zap.Int("unit", u.Index),
			zap.Int("offset", u.Span.Start),
			zap.String("text", excerpt(u.Text)),
		)
		return r
	}
	if u.IsNamedOnly {
		return r
	}

	refs := make([]*types.NormalizedReference, 0, len(u.Templates))
	for _, t := range u.Templates {
		ref, anomalies := a.normalizer.Normalize(t)
		anomalies = append(anomalies, a.extractor.NormalizeIdentifiers(ref)...)
		refs = append(refs, ref)
		r.Anomalies = append(r.Anomalies, anomalies...)
	}
	if _, ok := classify.Primary(u); ok {
		r.Reference = refs[0]
	}
	if r.Facets.MultipleTemplatesFound {
		names := make([]string, len(u.Templates))
		for i, t := range u.Templates {
			names[i] = wikitext.CanonicalName(t.Name)
		}
		r.Anomalies = append(r.Anomalies, types.Anomaly{
			Kind:   types.AnomalyMultipleTemplates,
			Detail: strings.Join(names, ", "),
		})
	}

	urls, anomalies := a.extractor.URLs(u, refs)
	r.URLs = urls
	r.Anomalies = append(r.Anomalies, anomalies...)

	if r.Reference != nil {
		r.Identity, r.HasHash = a.hasher.Identity(r.Reference)
		r.WebsiteIdentity, _ = a.hasher.WebsiteIdentity(r.Reference)
	}

	for _, an := range r.Anomalies {
		a.logger.Debug("reference anomaly",
			zap.Int("unit", u.Index),
			zap.String("kind", string(an.Kind)),
			zap.String("detail", an.Detail),
		)
	}
	return r
}

// Resolve looks up every hashed reference in c and records the external id
// of each hit. A cache failure aborts resolution with an error wrapping
// cache.ErrCacheUnavailable; analysis is left untouched in that case.
func Resolve(ctx context.Context, analysis *types.ArticleAnalysis, c *cache.Cache) (hits int, err error) {
	ids := make(map[int]string)
	for i, r := range analysis.References {
		if !r.HasHash {
			continue
		}
		id, ok, err := c.Lookup(ctx, r.Identity)
		if err != nil {
			return 0, fmt.Errorf("resolving unit %d: %w", r.Unit.Index, err)
		}
		if ok {
			ids[i] = id
		}
	}
	for i, id := range ids {
		analysis.References[i].ExternalID = id
	}
	return len(ids), nil
}

const excerptLength = 80

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= excerptLength {
		return s
	}
	cut := excerptLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
