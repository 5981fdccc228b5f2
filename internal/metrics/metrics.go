// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the prometheus counters exported by wikicite.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/wikicite/pkg/types"
)

// Cache operation results.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultInserted = "inserted"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Metrics groups the wikicite counters.
type Metrics struct {
	articles      prometheus.Counter
	parseFailures prometheus.Counter
	references    *prometheus.CounterVec
	unsupported   prometheus.Counter
	anomalies     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	cacheInserts  *prometheus.CounterVec
}

// New creates the counters and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		articles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikicite_articles_analyzed_total",
			Help: "Total number of articles analyzed.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikicite_parse_failures_total",
			Help: "Total number of articles whose markup could not be parsed.",
		}),
		references: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikicite_references_total",
			Help: "Reference units found, by origin.",
		}, []string{"origin"}),
		unsupported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wikicite_unsupported_templates_total",
			Help: "Template invocations with an unsupported name.",
		}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikicite_anomalies_total",
			Help: "Recoverable anomalies found during analysis, by kind.",
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikicite_cache_lookups_total",
			Help: "Identity cache lookups, by result.",
		}, []string{"result"}),
		cacheInserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wikicite_cache_inserts_total",
			Help: "Identity cache inserts, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.articles,
			m.parseFailures,
			m.references,
			m.unsupported,
			m.anomalies,
			m.cacheLookups,
			m.cacheInserts,
		)
	}
	return m
}

// ObserveArticle records one analyzed article.
func (m *Metrics) ObserveArticle(refs []types.AnalyzedReference) {
	if m == nil {
		return
	}
	m.articles.Inc()
	for _, r := range refs {
		switch {
		case r.Unit.IsNamedOnly:
			m.references.WithLabelValues("named").Inc()
		case r.Unit.IsGeneral:
			m.references.WithLabelValues("general").Inc()
		default:
			m.references.WithLabelValues("citation").Inc()
		}
		for _, a := range r.Anomalies {
			m.anomalies.WithLabelValues(string(a.Kind)).Inc()
			if a.Kind == types.AnomalyUnknownTemplate {
				m.unsupported.Inc()
			}
		}
	}
}

// ParseFailure records an article that could not be parsed.
func (m *Metrics) ParseFailure() {
	if m == nil {
		return
	}
	m.parseFailures.Inc()
}

// CacheLookup records a cache lookup result.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CacheInsert records a cache insert result.
func (m *Metrics) CacheInsert(result string) {
	if m == nil {
		return
	}
	m.cacheInserts.WithLabelValues(result).Inc()
}
