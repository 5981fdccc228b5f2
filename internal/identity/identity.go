// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity computes content-addressed identities for normalized
// references. The digest is a deduplication key, not an integrity check.
package identity

import (
	"crypto/md5"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/wikicite/internal/identifier"
	"github.com/pdiddy/wikicite/pkg/types"
)

// Field names mixed into the digest.
const (
	FieldWikidataID = "wikidata_id"
	FieldDOI        = "doi"
	FieldPMID       = "pmid"
	FieldISBN       = "isbn"
	FieldOCLC       = "oclc"
	FieldURL        = "url"
	FieldWebsite    = "website"
)

// Hasher computes identities under one namespace salt.
type Hasher struct {
	salt     string
	hashURLs bool
}

// New returns a Hasher. salt identifies the backing store instance; hashURLs
// enables the url field as the last identity candidate.
func New(salt string, hashURLs bool) *Hasher {
	return &Hasher{salt: salt, hashURLs: hashURLs}
}

// Selected returns the field and normalized value the identity of ref is
// computed from, in priority order wikidata_id, doi, pmid, isbn, oclc, url.
func (h *Hasher) Selected(ref *types.NormalizedReference) (field, value string, ok bool) {
	if ref == nil {
		return "", "", false
	}
	candidates := []struct{ field, value string }{
		{FieldWikidataID, ref.WikidataID},
		{FieldDOI, ref.DOI},
		{FieldPMID, ref.PMID},
		{FieldISBN, isbnValue(ref)},
		{FieldOCLC, ref.OCLC},
	}
	if h.hashURLs {
		candidates = append(candidates, struct{ field, value string }{FieldURL, ref.URL})
	}
	for _, c := range candidates {
		if v := Canonical(c.value); v != "" {
			return c.field, v, true
		}
	}
	return "", "", false
}

// Identity returns the identity hash of ref, or false when none of the
// identity fields is populated.
func (h *Hasher) Identity(ref *types.NormalizedReference) (string, bool) {
	field, value, ok := h.Selected(ref)
	if !ok {
		return "", false
	}
	return h.Digest(field, value), true
}

// WebsiteIdentity returns the hash of the first-level domain of ref's url.
func (h *Hasher) WebsiteIdentity(ref *types.NormalizedReference) (string, bool) {
	if ref == nil {
		return "", false
	}
	domain := ref.FirstLevelDomain
	if domain == "" && ref.URL != "" {
		domain, _ = identifier.FirstLevelDomain(ref.URL)
	}
	v := Canonical(domain)
	if v == "" {
		return "", false
	}
	return h.Digest(FieldWebsite, v), true
}

// Digest hashes an already canonical value under the salt and field name.
func (h *Hasher) Digest(field, value string) string {
	sum := md5.Sum([]byte(h.salt + "|" + field + "|" + value))
	return fmt.Sprintf("%x", sum)
}

// Canonical lower-cases s and removes all whitespace.
func Canonical(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// isbnValue prefers the 13-digit form and strips dashes.
func isbnValue(ref *types.NormalizedReference) string {
	for _, v := range []string{ref.ISBN13, ref.ISBN10, ref.ISBN} {
		if v != "" {
			return identifier.StripDashes(v)
		}
	}
	return ""
}
