// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"net/url"
	"regexp"
	"strings"
)

// ISBNKind is the length class of an ISBN.
type ISBNKind int

const (
	ISBNInvalid ISBNKind = iota
	ISBN10
	ISBN13
)

func (k ISBNKind) String() string {
	switch k {
	case ISBN10:
		return "isbn10"
	case ISBN13:
		return "isbn13"
	default:
		return "invalid"
	}
}

var (
	isbnPrefix = regexp.MustCompile(`(?i)^isbn(?:-1[03])?:?\s*`)
	dashRun    = regexp.MustCompile(`-{2,}`)
	isbnChars  = regexp.MustCompile(`^[0-9]+[0-9Xx]?$`)
)

// NormalizeISBN converts an ISBN to dash form (spaces become dashes) and
// classifies it by its digit count. Any length other than 10 or 13, or a
// character other than a digit or a final X, is invalid.
func NormalizeISBN(raw string) (string, ISBNKind) {
	s := isbnPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	s = strings.Join(strings.Fields(s), "-")
	s = strings.NewReplacer("‐", "-", "‑", "-", "–", "-").Replace(s)
	s = strings.Trim(dashRun.ReplaceAllString(s, "-"), "-")

	digits := strings.ReplaceAll(s, "-", "")
	if !isbnChars.MatchString(digits) {
		return "", ISBNInvalid
	}
	s = strings.ToUpper(s)
	switch len(digits) {
	case 10:
		return s, ISBN10
	case 13:
		if strings.ContainsAny(digits, "Xx") {
			return "", ISBNInvalid
		}
		return s, ISBN13
	}
	return "", ISBNInvalid
}

// StripDashes removes the dashes of a dash-form ISBN.
func StripDashes(isbn string) string {
	return strings.ReplaceAll(isbn, "-", "")
}

var (
	doiPrefix  = regexp.MustCompile(`(?i)^(?:doi:\s*|https?://(?:dx\.)?doi\.org/)`)
	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// NormalizeDOI strips "doi:" and resolver-URL prefixes.
func NormalizeDOI(raw string) string {
	return doiPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
}

// DOIFromURL returns the DOI addressed by a doi.org resolver URL.
func DOIFromURL(raw string) (string, bool) {
	u, err := parseLoose(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "doi.org" && !strings.HasSuffix(host, ".doi.org") {
		return "", false
	}
	doi, err := url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), "/"))
	if err != nil || !doiPattern.MatchString(doi) {
		return "", false
	}
	return doi, true
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePMID keeps only the digits of a PubMed id.
func NormalizePMID(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

var oclcPrefix = regexp.MustCompile(`(?i)^(?:\(ocolc\)|ocm|ocn|on)\s*`)

// NormalizeOCLC strips the OCLC control-number prefixes.
func NormalizeOCLC(raw string) string {
	return oclcPrefix.ReplaceAllString(strings.TrimSpace(raw), "")
}

var wikidataPattern = regexp.MustCompile(`(?i)^q\d+$`)

// NormalizeWikidataID returns the upper-cased item id, or "" when raw is not
// of the form Q<digits>.
func NormalizeWikidataID(raw string) string {
	s := strings.TrimSpace(raw)
	if !wikidataPattern.MatchString(s) {
		return ""
	}
	return strings.ToUpper(s)
}

var (
	googleBooksEdition = regexp.MustCompile(`^/books/edition/[^/]+/([A-Za-z0-9_-]{12})`)
	archiveDetails     = regexp.MustCompile(`^/details/([^/?#]+)`)
)

// GoogleBooksID returns the volume id of a Google Books URL. domain is the
// URL's first-level domain.
func GoogleBooksID(raw, domain string) (string, bool) {
	if !strings.HasPrefix(domain, "google.") {
		return "", false
	}
	u, err := parseLoose(raw)
	if err != nil || !strings.HasPrefix(u.Path, "/books") {
		return "", false
	}
	if id := u.Query().Get("id"); id != "" {
		return id, true
	}
	if m := googleBooksEdition.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "", false
}

// IsGoogleBooksURL reports whether the URL points into Google Books.
func IsGoogleBooksURL(raw, domain string) bool {
	if !strings.HasPrefix(domain, "google.") {
		return false
	}
	u, err := parseLoose(raw)
	return err == nil && (strings.HasPrefix(u.Path, "/books") || strings.HasPrefix(strings.ToLower(u.Hostname()), "books."))
}

// InternetArchiveID returns the item identifier of an archive.org details
// URL. Wayback snapshot URLs carry no item id.
func InternetArchiveID(raw, domain string) (string, bool) {
	if domain != "archive.org" {
		return "", false
	}
	u, err := parseLoose(raw)
	if err != nil || strings.EqualFold(u.Hostname(), "web.archive.org") {
		return "", false
	}
	m := archiveDetails.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
