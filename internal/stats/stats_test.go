// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/pkg/types"
)

type kindMap map[string]types.TemplateKind

func (m kindMap) Kind(name string) types.TemplateKind {
	if k, ok := m[strings.ToLower(name)]; ok {
		return k
	}
	return types.KindOther
}

var kinds = kindMap{
	"cite web":  types.KindCiteWeb,
	"cite book": types.KindCiteBook,
	"isbn":      types.KindISBN,
}

func tpl(name string) types.TemplateInvocation {
	return types.TemplateInvocation{Name: name, Raw: "{{" + name + "}}"}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, kinds, Options{})
	assert.Equal(t, 0, got.PercentOfContentReferencesWithAHash)
	assert.Equal(t, types.ReferenceCounts{}, got.References)
	assert.Empty(t, got.FirstLevelDomainCounts)
	assert.Nil(t, got.UnsupportedTemplates)
	assert.Nil(t, got.URLs)
}

func TestAggregate_OnlyNamedReferences(t *testing.T) {
	refs := []types.AnalyzedReference{
		{Unit: types.RawReferenceUnit{IsNamedOnly: true}, Facets: types.Facets{IsNamedReference: true, IsCitationReference: true}},
		{Unit: types.RawReferenceUnit{IsNamedOnly: true}, Facets: types.Facets{IsNamedReference: true, IsCitationReference: true}},
	}
	got := Aggregate(refs, kinds, Options{})
	assert.Equal(t, 2, got.References.All)
	assert.Equal(t, 0, got.References.Content)
	assert.Equal(t, 2, got.References.Named)
	assert.Equal(t, 0, got.PercentOfContentReferencesWithAHash)
}

func articleRefs() []types.AnalyzedReference {
	return []types.AnalyzedReference{
		{
			Unit:      types.RawReferenceUnit{Templates: []types.TemplateInvocation{tpl("cite web")}},
			Reference: &types.NormalizedReference{Kind: types.KindCiteWeb},
			Facets:    types.Facets{StyleTemplateFound: true, IsCitationReference: true},
			URLs: []types.ExtractedURL{
				{URL: "http://b.org/1", FirstLevelDomain: "b.org"},
				{URL: "https://web.archive.org/web/1/http://b.org/1", FirstLevelDomain: "archive.org", Archive: "Internet Archive", Field: "archive_url"},
			},
		},
		{
			Unit:      types.RawReferenceUnit{Templates: []types.TemplateInvocation{tpl("cite book"), tpl("sfn")}},
			Reference: &types.NormalizedReference{Kind: types.KindCiteBook},
			Facets:    types.Facets{StyleTemplateFound: true, MultipleTemplatesFound: true, IsCitationReference: true},
			HasHash:   true,
			URLs:      []types.ExtractedURL{{URL: "http://a.org", FirstLevelDomain: "a.org"}},
		},
		{
			Unit:   types.RawReferenceUnit{IsGeneral: true, Text: "Smith http://b.org/1"},
			Facets: types.Facets{HasPlainText: true, IsGeneralReference: true},
			URLs:   []types.ExtractedURL{{URL: "http://b.org/1", FirstLevelDomain: "b.org", Source: types.URLFromText}},
		},
		{
			Unit:   types.RawReferenceUnit{IsNamedOnly: true},
			Facets: types.Facets{IsNamedReference: true, IsCitationReference: true},
		},
		{
			Unit:   types.RawReferenceUnit{Templates: []types.TemplateInvocation{tpl("sfn")}, Malformed: true},
			Failed: true,
		},
	}
}

func TestAggregate_Counts(t *testing.T) {
	got := Aggregate(articleRefs(), kinds, Options{})

	assert.Equal(t, types.ReferenceCounts{
		All:               5,
		Content:           4,
		Named:             1,
		General:           1,
		Citation:          3,
		CiteBook:          1,
		CiteWeb:           1,
		StyleTemplate:     2,
		PlainText:         1,
		WithoutTemplates:  1,
		MultipleTemplates: 1,
		Unclassified:      1,
		Hashed:            1,
		KnownArchive:      1,
	}, got.References)

	assert.Equal(t, 25, got.PercentOfContentReferencesWithAHash)

	assert.Equal(t, []types.DomainCount{
		{Domain: "b.org", Count: 2},
		{Domain: "a.org", Count: 1},
		{Domain: "archive.org", Count: 1},
	}, got.FirstLevelDomainCounts)

	require.Len(t, got.UnsupportedTemplates, 1)
	assert.Equal(t, types.TemplateSample{Name: "sfn", Count: 2, Sample: "{{sfn}}"}, got.UnsupportedTemplates[0])

	assert.Nil(t, got.URLs)
}

func TestAggregate_CheckURLs(t *testing.T) {
	got := Aggregate(articleRefs(), kinds, Options{CheckURLs: true})
	assert.Equal(t, []string{
		"http://b.org/1",
		"https://web.archive.org/web/1/http://b.org/1",
		"http://a.org",
	}, got.URLs)
}

func TestAggregate_Idempotent(t *testing.T) {
	refs := articleRefs()
	assert.Equal(t, Aggregate(refs, kinds, Options{CheckURLs: true}), Aggregate(refs, kinds, Options{CheckURLs: true}))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("aé", 2))
}
