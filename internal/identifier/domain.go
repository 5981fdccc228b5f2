// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// snapshotPatterns map archive snapshot URLs to the archive's domain before
// generic domain parsing is attempted. A pattern with an empty domain uses
// its first capture group.
var snapshotPatterns = []struct {
	re     *regexp.Regexp
	domain string
}{
	{regexp.MustCompile(`(?i)^(?:https?:)?(?://)?(?:www\.)?web\.archive\.org/web/\d+`), "archive.org"},
	{regexp.MustCompile(`(?i)^(?:https?:)?(?://)?(?:www\.)?(archive\.(?:today|ph|is|li|fo|md|vn))/\w+`), ""},
	{regexp.MustCompile(`(?i)^(?:https?:)?(?://)?(?:www\.)?webcitation\.org/\w+`), "webcitation.org"},
	{regexp.MustCompile(`(?i)^(?:https?:)?(?://)?(?:www\.)?ghostarchive\.org/archive/\w+`), "ghostarchive.org"},
}

// FirstLevelDomain returns the registrable domain of a URL ("example.com"
// for "https://www.example.com/a"). IP hosts are returned as is. Scheme-less
// URLs are accepted. It reports false when no domain can be derived.
func FirstLevelDomain(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, p := range snapshotPatterns {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if p.domain != "" {
			return p.domain, true
		}
		return strings.ToLower(m[1]), true
	}

	u, err := parseLoose(raw)
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	if net.ParseIP(host) != nil {
		return host, true
	}
	if !strings.Contains(host, ".") {
		return "", false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	return domain, true
}

// parseLoose parses a URL, assuming http for scheme-less input.
func parseLoose(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + strings.TrimPrefix(raw, "//")
	}
	return url.Parse(raw)
}

// knownArchives maps archive provider domains to provider names.
var knownArchives = map[string]string{
	"archive.org":       "Internet Archive",
	"archive.today":     "archive.today",
	"archive.ph":        "archive.today",
	"archive.is":        "archive.today",
	"archive.li":        "archive.today",
	"archive.fo":        "archive.today",
	"archive.md":        "archive.today",
	"archive.vn":        "archive.today",
	"webcitation.org":   "WebCite",
	"ghostarchive.org":  "Ghost Archive",
	"archive-it.org":    "Archive-It",
	"perma.cc":          "Perma.cc",
	"arquivo.pt":        "Arquivo.pt",
	"webarchive.org.uk": "UK Web Archive",
}

// KnownArchive returns the provider name for an archive domain.
func KnownArchive(domain string) (string, bool) {
	name, ok := knownArchives[strings.ToLower(domain)]
	return name, ok
}
