// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/pkg/types"
)

func newAnalyzer(t *testing.T, cfg types.AnalysisConfig, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	return a
}

func TestCiteWebReference(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	res, err := a.AnalyzeDetailed(`<ref>{{cite web|url=http://example.com|title=X}}</ref>`, Options{})
	require.NoError(t, err)
	require.Len(t, res.References, 1)

	r := res.References[0]
	assert.True(t, r.Facets.IsCitationReference)
	assert.True(t, r.Facets.StyleTemplateFound)
	assert.False(t, r.Facets.IsNamedReference)
	assert.False(t, r.HasHash)
	assert.Empty(t, r.Identity)
	require.Len(t, r.URLs, 1)
	assert.Equal(t, "example.com", r.URLs[0].FirstLevelDomain)
	require.NotNil(t, r.Reference)
	assert.Equal(t, types.KindCiteWeb, r.Reference.Kind)
	assert.Equal(t, "X", r.Reference.Title)
	assert.NotEmpty(t, r.WebsiteIdentity)

	s := res.Statistics
	assert.Equal(t, 1, s.References.All)
	assert.Equal(t, 1, s.References.Citation)
	assert.Equal(t, 1, s.References.CiteWeb)
	assert.Equal(t, 0, s.PercentOfContentReferencesWithAHash)
	assert.Equal(t, []types.DomainCount{{Domain: "example.com", Count: 1}}, s.FirstLevelDomainCounts)
	assert.Empty(t, s.URLs, "URL list only when checking URLs")
}

func TestNamedReference(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	res, err := a.AnalyzeDetailed(`<ref name="x"/>`, Options{})
	require.NoError(t, err)
	require.Len(t, res.References, 1)

	r := res.References[0]
	assert.True(t, r.Facets.IsNamedReference)
	assert.Empty(t, r.Unit.Templates)
	assert.False(t, r.HasHash)
	assert.Nil(t, r.Reference)
	assert.Equal(t, 0, res.Statistics.References.Content)
	assert.Equal(t, 0, res.Statistics.PercentOfContentReferencesWithAHash)
}

func TestSameBookAcrossArticlesSharesIdentity(t *testing.T) {
	ctx := context.Background()
	a := newAnalyzer(t, types.AnalysisConfig{IdentitySalt: "wiki"})

	first, err := a.AnalyzeDetailed("Intro.<ref>{{cite book|isbn=978-3-030-39690-9}}</ref>", Options{})
	require.NoError(t, err)
	second, err := a.AnalyzeDetailed("Other article text.\n\nMore.<ref name=\"b\">{{Cite book |isbn=978-3-030-39690-9 }}</ref>", Options{})
	require.NoError(t, err)

	r1, r2 := first.References[0], second.References[0]
	require.True(t, r1.HasHash)
	require.True(t, r2.HasHash)
	assert.Equal(t, r1.Identity, r2.Identity)
	assert.Equal(t, "61cbf661942234c17d244f8b29f9e862", r1.Identity)

	c := cache.New(cache.NewMemoryStore())
	id, inserted, err := c.Insert(ctx, r1.Identity, "Q42")
	require.NoError(t, err)
	require.True(t, inserted)
	assert.Equal(t, "Q42", id)

	hits, err := Resolve(ctx, second, c)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "Q42", second.References[0].ExternalID)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{IdentitySalt: "wiki"})
	markup := `Lead.<ref>{{cite journal|doi=10.1000/xyz|title=T|url=https://doi.org/10.1000/xyz}}</ref>
Body.<ref name="n">{{cite web|url=https://www.bbc.co.uk/news/1|archive-url=https://web.archive.org/web/2020/https://www.bbc.co.uk/news/1}}</ref>
Again.<ref name="n"/>

== References ==
{{reflist}}
* {{cite book|last=Smith|first=J|title=Book|isbn=0-306-40615-2}}
* Plain text source, 1999.
`
	s1, err := a.Analyze(markup, Options{CheckURLs: true})
	require.NoError(t, err)
	s2, err := a.Analyze(markup, Options{CheckURLs: true})
	require.NoError(t, err)

	b1, err := json.Marshal(s1)
	require.NoError(t, err)
	b2, err := json.Marshal(s2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))

	assert.Equal(t, 5, s1.References.All)
	assert.Equal(t, 1, s1.References.Named)
	assert.Equal(t, 2, s1.References.General)
	assert.Equal(t, 2, s1.References.Hashed)
	assert.Equal(t, 4, s1.References.Content)
	assert.Equal(t, 50, s1.PercentOfContentReferencesWithAHash)
	assert.NotEmpty(t, s1.URLs)
}

func TestParseFailure(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	_, err := a.Analyze("<ref>\xff\xfe</ref>", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailure)

	res, err := a.AnalyzeDetailed("\xff", Options{})
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Nil(t, res)
}

func TestMalformedUnitIsLocal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := newAnalyzer(t, types.AnalysisConfig{IdentitySalt: "wiki"}, WithLogger(zap.New(core)))

	res, err := a.AnalyzeDetailed(
		`A.<ref>{{cite web|url=http://a.com</ref>B.<ref>{{cite book|isbn=0-306-40615-2}}</ref>`,
		Options{},
	)
	require.NoError(t, err)
	require.Len(t, res.References, 2)

	bad, good := res.References[0], res.References[1]
	assert.True(t, bad.Failed)
	assert.Equal(t, types.Facets{}, bad.Facets)
	assert.False(t, bad.HasHash)
	require.NotEmpty(t, bad.Anomalies)
	assert.Equal(t, types.AnomalyMalformedUnit, bad.Anomalies[0].Kind)

	assert.False(t, good.Failed)
	assert.True(t, good.HasHash)
	assert.Equal(t, 1, res.Statistics.References.Unclassified)
	assert.Equal(t, 1, logs.FilterMessage("reference unit could not be classified").Len())
}

func TestMultipleTemplatesAnomaly(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	res, err := a.AnalyzeDetailed(`<ref>{{cite web|url=http://a.com/x}} {{ISBN|0-306-40615-2}}</ref>`, Options{})
	require.NoError(t, err)
	require.Len(t, res.References, 1)

	r := res.References[0]
	assert.True(t, r.Facets.MultipleTemplatesFound)
	assert.True(t, r.Facets.StyleTemplateFound)
	assert.True(t, r.Facets.ISBNOnlyTemplateFound)
	assert.Equal(t, types.KindCiteWeb, r.Reference.Kind, "first template is primary")
	assert.Contains(t, r.Anomalies, types.Anomaly{Kind: types.AnomalyMultipleTemplates, Detail: "cite web, isbn"})
}

func TestUnsupportedTemplateCounted(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	s, err := a.Analyze(`<ref>{{sfn|Smith|1999|p=4}}</ref><ref>{{Sfn|Jones|2001}}</ref>`, Options{})
	require.NoError(t, err)
	require.Len(t, s.UnsupportedTemplates, 1)
	assert.Equal(t, "sfn", s.UnsupportedTemplates[0].Name)
	assert.Equal(t, 2, s.UnsupportedTemplates[0].Count)
	assert.Equal(t, "{{sfn|Smith|1999|p=4}}", s.UnsupportedTemplates[0].Sample)
	assert.Equal(t, 2, s.References.Other)
}

func TestResolveCacheUnavailable(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{IdentitySalt: "wiki"})
	res, err := a.AnalyzeDetailed(`<ref>{{cite journal|doi=10.1000/xyz}}</ref>`, Options{})
	require.NoError(t, err)

	store := cache.NewMemoryStore()
	c := cache.New(&brokenStore{store})
	_, err = Resolve(context.Background(), res, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrCacheUnavailable)
	assert.Empty(t, res.References[0].ExternalID)
}

func TestNormalizeTemplate(t *testing.T) {
	a := newAnalyzer(t, types.AnalysisConfig{})

	ref, anomalies, err := a.NormalizeTemplate(`{{cite book|isbn=0 306 40615 2|title=T|date=March 2001}}`)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
	assert.Equal(t, "0-306-40615-2", ref.ISBN10)
	require.NotNil(t, ref.PublicationDate)
	assert.Equal(t, 2001, ref.PublicationDate.Year())

	_, _, err = a.NormalizeTemplate("no template here")
	assert.Error(t, err)
}

type brokenStore struct{ *cache.MemoryStore }

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, assert.AnError
}
