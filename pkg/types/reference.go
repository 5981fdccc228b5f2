// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wikicite pipeline:
// reference units segmented from article markup, their normalized citation
// records, classification facets, and per-article statistics.
package types

import "time"

// Span is a half-open byte range [Start, End) into the article markup.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Param is one template parameter as authored. Positional parameters carry
// their effective index ("1", "2", ...) as Key.
type Param struct {
	Key        string `json:"key" yaml:"key"`
	Value      string `json:"value" yaml:"value"`
	Positional bool   `json:"positional,omitempty" yaml:"positional,omitempty"`
}

// TemplateInvocation is one {{name|...}} call with its parameters in source
// order. Duplicate keys are kept; Lookup applies last-wins.
type TemplateInvocation struct {
	// Name is the template name as authored, trimmed.
	Name string `json:"name" yaml:"name"`

	// Params lists the parameters in source order, duplicates included.
	Params []Param `json:"params,omitempty" yaml:"params,omitempty"`

	// Raw is the full markup of the invocation, braces included.
	Raw string `json:"raw" yaml:"raw"`

	// Span locates the invocation in the article markup.
	Span Span `json:"span" yaml:"span"`

	// Malformed is set when the closing braces were never found.
	Malformed bool `json:"malformed,omitempty" yaml:"malformed,omitempty"`
}

// Lookup returns the value of the last parameter whose key equals key.
func (t TemplateInvocation) Lookup(key string) (string, bool) {
	for i := len(t.Params) - 1; i >= 0; i-- {
		if t.Params[i].Key == key {
			return t.Params[i].Value, true
		}
	}
	return "", false
}

// RawReferenceUnit is one physical citation candidate: the body of an inline
// citation tag, or one line of a bibliography-style section.
type RawReferenceUnit struct {
	// Index is the zero-based position of the unit in the article.
	Index int `json:"index" yaml:"index"`

	// Span locates the unit in the article markup.
	Span Span `json:"span" yaml:"span"`

	// Text is the unit markup: the tag body or the section line.
	Text string `json:"text" yaml:"text"`

	// Templates lists the top-level template invocations inside the unit.
	Templates []TemplateInvocation `json:"templates,omitempty" yaml:"templates,omitempty"`

	// IsGeneral marks a bibliography-section line.
	IsGeneral bool `json:"is_general" yaml:"is_general"`

	// IsNamedOnly marks a citation tag that only points at another by name.
	IsNamedOnly bool `json:"is_named_only" yaml:"is_named_only"`

	// Name is the citation tag's name attribute, if any.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Group is the citation tag's group attribute, if any.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`

	// Section is the heading under which a general reference was found.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Malformed marks a unit whose markup could not be delimited (an
	// unclosed citation tag or an unterminated template).
	Malformed bool `json:"malformed,omitempty" yaml:"malformed,omitempty"`
}

// HasContent reports whether the unit carries citation content.
func (u RawReferenceUnit) HasContent() bool { return !u.IsNamedOnly }

// TemplateKind is the closed taxonomy of citation template styles.
type TemplateKind string

const (
	KindCiteBook    TemplateKind = "cite_book"
	KindCiteJournal TemplateKind = "cite_journal"
	KindCiteWeb     TemplateKind = "cite_web"
	KindCitation    TemplateKind = "citation"
	KindCiteQ       TemplateKind = "cite_q"
	KindISBN        TemplateKind = "isbn"
	KindURL         TemplateKind = "url"
	KindBareURL     TemplateKind = "bare_url"
	KindOther       TemplateKind = "other"
)

// IsStyle reports whether the kind is one of the citation-style templates
// (cite book, cite journal, cite web, citation).
func (k TemplateKind) IsStyle() bool {
	switch k {
	case KindCiteBook, KindCiteJournal, KindCiteWeb, KindCitation:
		return true
	}
	return false
}

// PersonRole identifies a contributor role in a citation.
type PersonRole string

const (
	RoleAuthor      PersonRole = "author"
	RoleEditor      PersonRole = "editor"
	RoleHost        PersonRole = "host"
	RoleInterviewer PersonRole = "interviewer"
	RoleTranslator  PersonRole = "translator"
)

// Person is one contributor record assembled from numbered parameters.
type Person struct {
	Role   PersonRole `json:"role" yaml:"role"`
	Number int        `json:"number" yaml:"number"`
	First  string     `json:"first,omitempty" yaml:"first,omitempty"`
	Last   string     `json:"last,omitempty" yaml:"last,omitempty"`
	Full   string     `json:"full,omitempty" yaml:"full,omitempty"`
	Link   string     `json:"link,omitempty" yaml:"link,omitempty"`
}

// NormalizedReference is the canonical citation record derived from one
// template invocation. Unknown parameters are kept in Extra.
type NormalizedReference struct {
	Kind         TemplateKind `json:"kind" yaml:"kind"`
	TemplateName string       `json:"template_name" yaml:"template_name"`

	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Publisher  string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	Periodical string `json:"periodical,omitempty" yaml:"periodical,omitempty"`

	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	ArchiveURL    string `json:"archive_url,omitempty" yaml:"archive_url,omitempty"`
	ChapterURL    string `json:"chapter_url,omitempty" yaml:"chapter_url,omitempty"`
	ConferenceURL string `json:"conference_url,omitempty" yaml:"conference_url,omitempty"`
	LayURL        string `json:"lay_url,omitempty" yaml:"lay_url,omitempty"`
	TranscriptURL string `json:"transcript_url,omitempty" yaml:"transcript_url,omitempty"`

	AccessDate      *time.Time `json:"access_date,omitempty" yaml:"access_date,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	ArchiveDate     *time.Time `json:"archive_date,omitempty" yaml:"archive_date,omitempty"`

	DOI        string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN       string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	ISBN10     string `json:"isbn_10,omitempty" yaml:"isbn_10,omitempty"`
	ISBN13     string `json:"isbn_13,omitempty" yaml:"isbn_13,omitempty"`
	PMID       string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	OCLC       string `json:"oclc,omitempty" yaml:"oclc,omitempty"`
	WikidataID string `json:"wikidata_id,omitempty" yaml:"wikidata_id,omitempty"`

	// FirstLevelDomain is the registrable domain of URL.
	FirstLevelDomain string `json:"first_level_domain_of_url,omitempty" yaml:"first_level_domain_of_url,omitempty"`

	// ArchiveFirstLevelDomain is the registrable domain of ArchiveURL.
	ArchiveFirstLevelDomain string `json:"first_level_domain_of_archive_url,omitempty" yaml:"first_level_domain_of_archive_url,omitempty"`

	GoogleBooksID     string `json:"google_books_id,omitempty" yaml:"google_books_id,omitempty"`
	InternetArchiveID string `json:"internet_archive_id,omitempty" yaml:"internet_archive_id,omitempty"`

	Authors      []Person `json:"authors,omitempty" yaml:"authors,omitempty"`
	Editors      []Person `json:"editors,omitempty" yaml:"editors,omitempty"`
	Hosts        []Person `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Interviewers []Person `json:"interviewers,omitempty" yaml:"interviewers,omitempty"`
	Translators  []Person `json:"translators,omitempty" yaml:"translators,omitempty"`

	// Extra holds parameters with no canonical name, keyed as authored.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// URLFields returns the populated URL-valued fields keyed by canonical name,
// in a fixed order.
func (r *NormalizedReference) URLFields() []NamedValue {
	if r == nil {
		return nil
	}
	var out []NamedValue
	for _, f := range []NamedValue{
		{Name: "url", Value: r.URL},
		{Name: "archive_url", Value: r.ArchiveURL},
		{Name: "chapter_url", Value: r.ChapterURL},
		{Name: "conference_url", Value: r.ConferenceURL},
		{Name: "lay_url", Value: r.LayURL},
		{Name: "transcript_url", Value: r.TranscriptURL},
	} {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// NamedValue pairs a canonical field name with its value.
type NamedValue struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Facets are the independent boolean classifications of one reference unit.
type Facets struct {
	HasPlainText           bool `json:"has_plain_text" yaml:"has_plain_text"`
	StyleTemplateFound     bool `json:"style_template_found" yaml:"style_template_found"`
	CiteQStyleFound        bool `json:"citeq_style_found" yaml:"citeq_style_found"`
	ISBNOnlyTemplateFound  bool `json:"isbn_only_template_found" yaml:"isbn_only_template_found"`
	URLOnlyTemplateFound   bool `json:"url_only_template_found" yaml:"url_only_template_found"`
	BareURLStyleFound      bool `json:"bare_url_style_found" yaml:"bare_url_style_found"`
	MultipleTemplatesFound bool `json:"multiple_templates_found" yaml:"multiple_templates_found"`
	IsCitationReference    bool `json:"is_citation_reference" yaml:"is_citation_reference"`
	IsGeneralReference     bool `json:"is_general_reference" yaml:"is_general_reference"`
	IsNamedReference       bool `json:"is_named_reference" yaml:"is_named_reference"`
}

// URLSource tells where an extracted URL was found.
type URLSource string

const (
	URLFromTemplate URLSource = "template"
	URLFromText     URLSource = "bare"
)

// ExtractedURL is one URL found in a reference unit.
type ExtractedURL struct {
	URL              string    `json:"url" yaml:"url"`
	Source           URLSource `json:"source" yaml:"source"`
	Field            string    `json:"field,omitempty" yaml:"field,omitempty"`
	FirstLevelDomain string    `json:"first_level_domain,omitempty" yaml:"first_level_domain,omitempty"`

	// Archive names the known web-archive provider, empty when none.
	Archive string `json:"archive,omitempty" yaml:"archive,omitempty"`

	GoogleBooksID     string `json:"google_books_id,omitempty" yaml:"google_books_id,omitempty"`
	InternetArchiveID string `json:"internet_archive_id,omitempty" yaml:"internet_archive_id,omitempty"`
}

// AnomalyKind classifies a recoverable problem found during analysis.
type AnomalyKind string

const (
	AnomalyUnknownTemplate   AnomalyKind = "unknown_template"
	AnomalyUnparsedDate      AnomalyKind = "unparsed_date"
	AnomalyMalformedISBN     AnomalyKind = "malformed_isbn"
	AnomalyUnknownArchive    AnomalyKind = "unknown_archive"
	AnomalyMultipleTemplates AnomalyKind = "multiple_templates"
	AnomalyEmbeddedID        AnomalyKind = "embedded_id"
	AnomalyMalformedUnit     AnomalyKind = "malformed_unit"
)

// Anomaly is a logged, non-fatal finding attached to a reference.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind" yaml:"kind"`
	Detail string      `json:"detail" yaml:"detail"`
}

// AnalyzedReference is a reference unit after classification, extraction
// and hashing.
type AnalyzedReference struct {
	Unit RawReferenceUnit `json:"unit" yaml:"unit"`

	// Reference is derived from the first template of the unit; nil for
	// named-only units, template-free units and failed units.
	Reference *NormalizedReference `json:"reference,omitempty" yaml:"reference,omitempty"`

	Facets Facets         `json:"facets" yaml:"facets"`
	URLs   []ExtractedURL `json:"urls,omitempty" yaml:"urls,omitempty"`

	// Identity is the content hash; empty when HasHash is false.
	Identity        string `json:"identity,omitempty" yaml:"identity,omitempty"`
	WebsiteIdentity string `json:"website_identity,omitempty" yaml:"website_identity,omitempty"`
	HasHash         bool   `json:"has_hash" yaml:"has_hash"`

	// ExternalID is set by identity resolution when the cache knows the hash.
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`

	Anomalies []Anomaly `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`

	// Failed marks a unit that could not be classified at all.
	Failed bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}
