// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier extracts URLs from reference units and normalizes the
// stable identifiers (ISBN, DOI, PMID, OCLC, Wikidata) of normalized
// references.
package identifier

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

var bareURLPattern = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s<>\[\]{}|"]+`)

// Extractor normalizes identifiers and collects URLs. Unrecognized archive
// domains are reported on the "curation" logger for manual review.
type Extractor struct {
	logger   *zap.Logger
	curation *zap.Logger
}

// New returns an Extractor logging to logger. A nil logger disables logging.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		logger:   logger,
		curation: logger.Named("curation"),
	}
}

// NormalizeIdentifiers rewrites the identifier fields of ref in place and
// derives its first-level domains and embedded ids. A malformed ISBN is
// cleared and reported.
func (e *Extractor) NormalizeIdentifiers(ref *types.NormalizedReference) []types.Anomaly {
	if ref == nil {
		return nil
	}
	var anomalies []types.Anomaly

	if ref.ISBN != "" {
		raw := ref.ISBN
		isbn, kind := NormalizeISBN(raw)
		ref.ISBN, ref.ISBN10, ref.ISBN13 = "", "", ""
		switch kind {
		case ISBN10:
			ref.ISBN, ref.ISBN10 = isbn, isbn
		case ISBN13:
			ref.ISBN, ref.ISBN13 = isbn, isbn
		default:
			anomalies = append(anomalies, types.Anomaly{Kind: types.AnomalyMalformedISBN, Detail: raw})
		}
	}

	ref.DOI = NormalizeDOI(ref.DOI)
	if ref.DOI == "" && ref.URL != "" {
		if doi, ok := DOIFromURL(ref.URL); ok {
			ref.DOI = doi
		}
	}
	ref.PMID = NormalizePMID(ref.PMID)
	ref.OCLC = NormalizeOCLC(ref.OCLC)
	ref.WikidataID = NormalizeWikidataID(ref.WikidataID)

	if ref.URL != "" {
		ref.FirstLevelDomain, _ = FirstLevelDomain(ref.URL)
		if id, ok := GoogleBooksID(ref.URL, ref.FirstLevelDomain); ok {
			ref.GoogleBooksID = id
		} else if IsGoogleBooksURL(ref.URL, ref.FirstLevelDomain) {
			anomalies = append(anomalies, types.Anomaly{Kind: types.AnomalyEmbeddedID, Detail: ref.URL})
		}
		if id, ok := InternetArchiveID(ref.URL, ref.FirstLevelDomain); ok {
			ref.InternetArchiveID = id
		}
	}
	if ref.ArchiveURL != "" {
		ref.ArchiveFirstLevelDomain, _ = FirstLevelDomain(ref.ArchiveURL)
	}
	return anomalies
}

// URLs returns the template and bare URLs of a unit, first occurrence wins.
// refs are the normalized references of every template in the unit.
func (e *Extractor) URLs(u types.RawReferenceUnit, refs []*types.NormalizedReference) ([]types.ExtractedURL, []types.Anomaly) {
	var (
		out       []types.ExtractedURL
		anomalies []types.Anomaly
		seen      = make(map[string]bool)
	)
	add := func(x types.ExtractedURL) {
		if x.URL == "" || seen[x.URL] {
			return
		}
		seen[x.URL] = true
		if a, ok := e.describe(&x, u.Index); !ok {
			anomalies = append(anomalies, a)
		}
		out = append(out, x)
	}

	for _, ref := range refs {
		for _, f := range ref.URLFields() {
			add(types.ExtractedURL{URL: f.Value, Source: types.URLFromTemplate, Field: f.Name})
		}
	}
	for _, raw := range BareURLs(u.Text) {
		add(types.ExtractedURL{URL: raw, Source: types.URLFromText})
	}
	return out, anomalies
}

// describe fills the domain, archive and embedded-id fields of x. It returns
// an anomaly and false when an archive URL points at an unknown archive.
func (e *Extractor) describe(x *types.ExtractedURL, unit int) (types.Anomaly, bool) {
	domain, ok := FirstLevelDomain(x.URL)
	if !ok {
		e.logger.Debug("no first-level domain", zap.String("url", x.URL), zap.Int("unit", unit))
		return types.Anomaly{}, true
	}
	x.FirstLevelDomain = domain
	if name, ok := KnownArchive(domain); ok {
		x.Archive = name
	}
	if id, ok := GoogleBooksID(x.URL, domain); ok {
		x.GoogleBooksID = id
	}
	if id, ok := InternetArchiveID(x.URL, domain); ok {
		x.InternetArchiveID = id
	}

	if x.Field == "archive_url" && x.Archive == "" {
		e.curation.Info("unknown archive domain",
			zap.String("domain", domain),
			zap.String("url", x.URL),
			zap.Int("unit", unit),
		)
		return types.Anomaly{Kind: types.AnomalyUnknownArchive, Detail: domain}, false
	}
	return types.Anomaly{}, true
}

// BareURLs scans the plain text of a unit for URLs. Comments, templates and
// tags are removed and line breaks are dropped before scanning.
func BareURLs(text string) []string {
	plain := wikitext.PlainText(text)
	plain = strings.NewReplacer("\r", "", "\n", "").Replace(plain)

	var out []string
	for _, m := range bareURLPattern.FindAllString(plain, -1) {
		if m = trimURL(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// trimURL drops trailing punctuation and an unbalanced closing parenthesis.
func trimURL(s string) string {
	for s != "" {
		last := s[len(s)-1]
		switch {
		case strings.IndexByte(".,;:!?'", last) >= 0:
			s = s[:len(s)-1]
		case last == ')' && strings.Count(s, "(") < strings.Count(s, ")"):
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}
