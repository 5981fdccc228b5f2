// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReferenceCounts holds per-facet reference totals for one article.
type ReferenceCounts struct {
	// All is the number of reference units found.
	All int `json:"all" yaml:"all"`

	// Content counts units that are not named-only.
	Content int `json:"content" yaml:"content"`

	Named    int `json:"named" yaml:"named"`
	General  int `json:"general" yaml:"general"`
	Citation int `json:"citation" yaml:"citation"`

	// Per primary template kind.
	CiteBook    int `json:"cite_book" yaml:"cite_book"`
	CiteJournal int `json:"cite_journal" yaml:"cite_journal"`
	CiteWeb     int `json:"cite_web" yaml:"cite_web"`
	CitationTpl int `json:"citation_template" yaml:"citation_template"`
	CiteQ       int `json:"cite_q" yaml:"cite_q"`
	ISBN        int `json:"isbn_template" yaml:"isbn_template"`
	URL         int `json:"url_template" yaml:"url_template"`
	BareURL     int `json:"bare_url_template" yaml:"bare_url_template"`
	Other       int `json:"other_template" yaml:"other_template"`

	StyleTemplate     int `json:"style_template" yaml:"style_template"`
	PlainText         int `json:"plain_text" yaml:"plain_text"`
	WithoutTemplates  int `json:"without_templates" yaml:"without_templates"`
	MultipleTemplates int `json:"multiple_templates" yaml:"multiple_templates"`
	Unclassified      int `json:"unclassified" yaml:"unclassified"`

	Hashed       int `json:"hashed" yaml:"hashed"`
	KnownArchive int `json:"known_archive_urls" yaml:"known_archive_urls"`
}

// DomainCount is one first-level domain and the number of URLs under it.
type DomainCount struct {
	Domain string `json:"domain" yaml:"domain"`
	Count  int    `json:"count" yaml:"count"`
}

// TemplateSample records an unsupported template name seen in references.
type TemplateSample struct {
	Name   string `json:"name" yaml:"name"`
	Count  int    `json:"count" yaml:"count"`
	Sample string `json:"sample" yaml:"sample"`
}

// ArticleStatistics is the aggregate over all references of one article.
// It is always recomputed in full from the reference list.
type ArticleStatistics struct {
	References ReferenceCounts `json:"references" yaml:"references"`

	// PercentOfContentReferencesWithAHash is 100*hashed/content, rounded
	// down; zero when there are no content references.
	PercentOfContentReferencesWithAHash int `json:"percent_of_content_references_with_a_hash" yaml:"percent_of_content_references_with_a_hash"`

	// FirstLevelDomainCounts is sorted by descending count, then domain.
	FirstLevelDomainCounts []DomainCount `json:"first_level_domain_counts" yaml:"first_level_domain_counts"`

	// UnsupportedTemplates is sorted by descending count, then name.
	UnsupportedTemplates []TemplateSample `json:"unsupported_templates,omitempty" yaml:"unsupported_templates,omitempty"`

	// URLs lists every distinct URL in source order. Populated only when
	// URL checking was requested.
	URLs []string `json:"urls,omitempty" yaml:"urls,omitempty"`
}

// ArticleAnalysis bundles the per-reference detail with the statistics.
type ArticleAnalysis struct {
	References []AnalyzedReference `json:"references" yaml:"references"`
	Statistics ArticleStatistics   `json:"statistics" yaml:"statistics"`
}
