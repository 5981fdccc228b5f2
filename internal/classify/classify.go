// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify computes the boolean facets of a reference unit.
package classify

import (
	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// KindResolver maps a template name to its kind.
type KindResolver interface {
	Kind(name string) types.TemplateKind
}

// Facets classifies u. Facets are independent: several style indicators may
// be true at once. A malformed unit gets no facets at all.
func Facets(u types.RawReferenceUnit, kinds KindResolver) types.Facets {
	if u.Malformed {
		return types.Facets{}
	}

	f := types.Facets{
		IsCitationReference: !u.IsGeneral,
		IsGeneralReference:  u.IsGeneral,
		IsNamedReference:    u.IsNamedOnly,
	}
	if u.IsNamedOnly {
		return f
	}

	f.HasPlainText = wikitext.HasWordContent(wikitext.PlainText(u.Text))
	f.MultipleTemplatesFound = len(u.Templates) > 1

	for _, t := range u.Templates {
		switch k := kinds.Kind(t.Name); {
		case k.IsStyle():
			f.StyleTemplateFound = true
		case k == types.KindCiteQ:
			f.CiteQStyleFound = true
		case k == types.KindISBN:
			f.ISBNOnlyTemplateFound = true
		case k == types.KindURL:
			f.URLOnlyTemplateFound = true
		case k == types.KindBareURL:
			f.BareURLStyleFound = true
		}
	}
	return f
}

// Primary returns the template a unit's normalized reference derives from:
// the first in source order.
func Primary(u types.RawReferenceUnit) (types.TemplateInvocation, bool) {
	if u.IsNamedOnly || u.Malformed || len(u.Templates) == 0 {
		return types.TemplateInvocation{}, false
	}
	return u.Templates[0], true
}
