// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats folds analyzed references into per-article statistics.
package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// SampleLength bounds the markup sample kept per unsupported template.
const SampleLength = 200

// KindResolver maps a template name to its kind.
type KindResolver interface {
	Kind(name string) types.TemplateKind
}

// Options controls optional parts of the aggregate.
type Options struct {
	// CheckURLs includes the distinct URL list for a liveness checker.
	CheckURLs bool
}

// Aggregate computes the statistics of one article from scratch. The result
// depends only on refs, so identical input yields identical output.
func Aggregate(refs []types.AnalyzedReference, kinds KindResolver, opts Options) types.ArticleStatistics {
	var (
		c         types.ReferenceCounts
		domains   = make(map[string]int)
		templates = make(map[string]*types.TemplateSample)
		urls      []string
		seenURL   = make(map[string]bool)
	)

	for _, r := range refs {
		c.All++
		if r.Unit.HasContent() {
			c.Content++
		}
		f := r.Facets
		count(&c.Named, f.IsNamedReference)
		count(&c.General, f.IsGeneralReference)
		count(&c.Citation, f.IsCitationReference)
		count(&c.StyleTemplate, f.StyleTemplateFound)
		count(&c.PlainText, f.HasPlainText)
		count(&c.MultipleTemplates, f.MultipleTemplatesFound)
		count(&c.Unclassified, r.Failed)
		count(&c.Hashed, r.HasHash)
		count(&c.WithoutTemplates, r.Unit.HasContent() && !r.Failed && len(r.Unit.Templates) == 0)

		if r.Reference != nil {
			countKind(&c, r.Reference.Kind)
		}

		for _, u := range r.URLs {
			if u.FirstLevelDomain != "" {
				domains[u.FirstLevelDomain]++
			}
			if u.Archive != "" {
				c.KnownArchive++
			}
			if opts.CheckURLs && !seenURL[u.URL] {
				seenURL[u.URL] = true
				urls = append(urls, u.URL)
			}
		}

		for _, t := range r.Unit.Templates {
			if kinds.Kind(t.Name) != types.KindOther {
				continue
			}
			name := wikitext.CanonicalName(t.Name)
			s, ok := templates[name]
			if !ok {
				s = &types.TemplateSample{Name: name, Sample: truncate(t.Raw, SampleLength)}
				templates[name] = s
			}
			s.Count++
		}
	}

	return types.ArticleStatistics{
		References:                          c,
		PercentOfContentReferencesWithAHash: Percent(c.Hashed, c.Content),
		FirstLevelDomainCounts:              domainCounts(domains),
		UnsupportedTemplates:                templateSamples(templates),
		URLs:                                urls,
	}
}

// Percent returns 100*part/whole rounded down, and 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return 100 * part / whole
}

func count(n *int, cond bool) {
	if cond {
		*n++
	}
}

func countKind(c *types.ReferenceCounts, k types.TemplateKind) {
	switch k {
	case types.KindCiteBook:
		c.CiteBook++
	case types.KindCiteJournal:
		c.CiteJournal++
	case types.KindCiteWeb:
		c.CiteWeb++
	case types.KindCitation:
		c.CitationTpl++
	case types.KindCiteQ:
		c.CiteQ++
	case types.KindISBN:
		c.ISBN++
	case types.KindURL:
		c.URL++
	case types.KindBareURL:
		c.BareURL++
	default:
		c.Other++
	}
}

func domainCounts(m map[string]int) []types.DomainCount {
	out := make([]types.DomainCount, 0, len(m))
	for d, n := range m {
		out = append(out, types.DomainCount{Domain: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

func templateSamples(m map[string]*types.TemplateSample) []types.TemplateSample {
	if len(m) == 0 {
		return nil
	}
	out := make([]types.TemplateSample, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
