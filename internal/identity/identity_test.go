// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikicite/pkg/types"
)

func TestIdentity_KnownDigest(t *testing.T) {
	h := New("wiki", false)

	got, ok := h.Identity(&types.NormalizedReference{DOI: "10.1000/XYZ"})
	require.True(t, ok)
	assert.Equal(t, "ba4a4cf10058929b1a03354c7fdf94ba", got)

	got, ok = h.Identity(&types.NormalizedReference{ISBN: "978-3-030-39690-9", ISBN13: "978-3-030-39690-9"})
	require.True(t, ok)
	assert.Equal(t, "61cbf661942234c17d244f8b29f9e862", got)
}

func TestIdentity_StableUnderCaseAndWhitespace(t *testing.T) {
	h := New("wiki", false)
	base, ok := h.Identity(&types.NormalizedReference{DOI: "10.1000/xyz"})
	require.True(t, ok)

	for _, v := range []string{"10.1000/XYZ", " 10.1000/xyz ", "10.1000/ x y z", "10.1000/Xyz\n"} {
		got, ok := h.Identity(&types.NormalizedReference{DOI: v})
		require.True(t, ok)
		assert.Equal(t, base, got, v)
	}

	other, _ := h.Identity(&types.NormalizedReference{DOI: "10.1000/xyy"})
	assert.NotEqual(t, base, other)
}

func TestIdentity_Priority(t *testing.T) {
	h := New("wiki", true)
	tests := []struct {
		name      string
		ref       types.NormalizedReference
		wantField string
	}{
		{"wikidata first", types.NormalizedReference{WikidataID: "Q1", DOI: "10.1/a", PMID: "1"}, FieldWikidataID},
		{"doi over isbn", types.NormalizedReference{DOI: "10.1/a", ISBN: "0-306-40615-2", ISBN10: "0-306-40615-2"}, FieldDOI},
		{"pmid over isbn", types.NormalizedReference{PMID: "7", ISBN13: "978-3-030-39690-9"}, FieldPMID},
		{"isbn over oclc", types.NormalizedReference{ISBN13: "978-3-030-39690-9", OCLC: "9"}, FieldISBN},
		{"oclc over url", types.NormalizedReference{OCLC: "9", URL: "http://a.org"}, FieldOCLC},
		{"url last", types.NormalizedReference{URL: "http://a.org", Title: "T"}, FieldURL},
		{"blank values skipped", types.NormalizedReference{DOI: "  ", PMID: "5"}, FieldPMID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			field, value, ok := h.Selected(&tc.ref)
			require.True(t, ok)
			assert.Equal(t, tc.wantField, field)

			got, ok := h.Identity(&tc.ref)
			require.True(t, ok)
			assert.Equal(t, h.Digest(field, value), got)
		})
	}
}

func TestIdentity_DOIAlwaysBeatsISBN(t *testing.T) {
	h := New("wiki", false)
	doiOnly, _ := h.Identity(&types.NormalizedReference{DOI: "10.5555/12345678"})
	for _, isbn := range []string{"0-306-40615-2", "978-3-030-39690-9", "978-0-00-000000-2"} {
		got, ok := h.Identity(&types.NormalizedReference{DOI: "10.5555/12345678", ISBN: isbn, ISBN13: isbn})
		require.True(t, ok)
		assert.Equal(t, doiOnly, got, isbn)
	}
}

func TestIdentity_URLHashingDisabledByDefault(t *testing.T) {
	ref := &types.NormalizedReference{URL: "http://example.com", Title: "X"}

	_, ok := New("wiki", false).Identity(ref)
	assert.False(t, ok)

	_, ok = New("wiki", true).Identity(ref)
	assert.True(t, ok)
}

func TestIdentity_None(t *testing.T) {
	h := New("wiki", true)
	_, ok := h.Identity(nil)
	assert.False(t, ok)
	_, ok = h.Identity(&types.NormalizedReference{Title: "Only a title"})
	assert.False(t, ok)
}

func TestIdentity_SaltAndFieldSeparateNamespaces(t *testing.T) {
	a, _ := New("store-a", false).Identity(&types.NormalizedReference{PMID: "42"})
	b, _ := New("store-b", false).Identity(&types.NormalizedReference{PMID: "42"})
	assert.NotEqual(t, a, b)

	h := New("store-a", false)
	pmid, _ := h.Identity(&types.NormalizedReference{PMID: "42"})
	oclc, _ := h.Identity(&types.NormalizedReference{OCLC: "42"})
	assert.NotEqual(t, pmid, oclc)
}

func TestWebsiteIdentity(t *testing.T) {
	h := New("", false)

	got, ok := h.WebsiteIdentity(&types.NormalizedReference{FirstLevelDomain: "example.com"})
	require.True(t, ok)
	assert.Equal(t, "cb38a2367172e65986c9ddc0f941286a", got)

	derived, ok := h.WebsiteIdentity(&types.NormalizedReference{URL: "https://www.Example.com/page"})
	require.True(t, ok)
	assert.Equal(t, got, derived)

	_, ok = h.WebsiteIdentity(&types.NormalizedReference{DOI: "10.1/x"})
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "abc", Canonical(" A\tb\nC "))
	assert.Equal(t, "", Canonical(" \n "))
}
