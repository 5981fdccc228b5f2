// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits a parsed article into raw reference units: one per
// inline citation tag and one per content line of a bibliography section.
package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// DefaultSectionPatterns match the titles of bibliography-style sections.
var DefaultSectionPatterns = []string{
	`references?`,
	`general references`,
	`bibliography`,
	`sources`,
	`works cited`,
	`cited works`,
	`further reading`,
	`notes and references`,
	`references and notes`,
	`citations`,
	`literature`,
}

// DefaultIgnoredTemplates are layout templates that never carry a citation.
var DefaultIgnoredTemplates = []string{
	"reflist",
	"refbegin",
	"refend",
	"notelist",
	"div col",
	"div col end",
	"colbegin",
	"colend",
	"refcolumns",
	"commons category",
}

// Segmenter produces reference units from a parsed document. It holds only
// compiled configuration and is safe for concurrent use.
type Segmenter struct {
	sections []*regexp.Regexp
	ignored  map[string]bool
}

// New compiles the section patterns and ignored template list from cfg,
// falling back to the defaults for empty lists.
func New(cfg types.AnalysisConfig) (*Segmenter, error) {
	patterns := cfg.BibliographySections
	if len(patterns) == 0 {
		patterns = DefaultSectionPatterns
	}
	ignored := cfg.IgnoredLineTemplates
	if len(ignored) == 0 {
		ignored = DefaultIgnoredTemplates
	}

	s := &Segmenter{ignored: make(map[string]bool, len(ignored))}
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("compiling section pattern %q: %w", p, err)
		}
		s.sections = append(s.sections, re)
	}
	for _, name := range ignored {
		s.ignored[wikitext.CanonicalName(name)] = true
	}
	return s, nil
}

// Segment returns the reference units of doc ordered by source offset, with
// Index assigned in that order.
func (s *Segmenter) Segment(doc *wikitext.Document) []types.RawReferenceUnit {
	units := citationUnits(doc)
	units = append(units, s.generalUnits(doc)...)

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Span.Start < units[j].Span.Start
	})
	for i := range units {
		units[i].Index = i
	}
	return units
}

// IsBibliographySection reports whether a heading title names a
// bibliography-style section.
func (s *Segmenter) IsBibliographySection(title string) bool {
	title = strings.TrimSpace(title)
	for _, re := range s.sections {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

func citationUnits(doc *wikitext.Document) []types.RawReferenceUnit {
	refs := doc.Refs()
	units := make([]types.RawReferenceUnit, 0, len(refs))
	for _, tag := range refs {
		u := types.RawReferenceUnit{
			Name:  tag.Attrs["name"],
			Group: tag.Attrs["group"],
		}
		switch {
		case tag.Unclosed:
			u.Span = tag.Loc
			u.Text = doc.Text[tag.Loc.Start:tag.Loc.End]
			u.Malformed = true
		case tag.SelfClosing:
			u.Span = tag.Loc
			u.IsNamedOnly = true
		default:
			u.Span = tag.BodyLoc
			u.Text = tag.Body
			u.Templates = wikitext.Templates(tag.Children)
			u.IsNamedOnly = !wikitext.HasWordContent(wikitext.StripComments(tag.Body))
			u.Malformed = anyMalformed(u.Templates)
		}
		units = append(units, u)
	}
	return units
}

// line accumulates the nodes of one bibliography line.
type line struct {
	start, end int
	templates  []types.TemplateInvocation
	malformed  bool
}

func (s *Segmenter) generalUnits(doc *wikitext.Document) []types.RawReferenceUnit {
	var units []types.RawReferenceUnit
	headings := doc.Headings()

	covered := -1
	for i, h := range headings {
		if h.Loc.Start < covered || !s.IsBibliographySection(h.Title) {
			continue
		}
		end := len(doc.Text)
		for _, next := range headings[i+1:] {
			if next.Level <= h.Level {
				end = next.Loc.Start
				break
			}
		}
		covered = end
		units = append(units, s.sectionUnits(doc, h, end)...)
	}
	return units
}

func (s *Segmenter) sectionUnits(doc *wikitext.Document, h *wikitext.Heading, end int) []types.RawReferenceUnit {
	var units []types.RawReferenceUnit
	cur := line{start: h.Loc.End, end: h.Loc.End}

	emit := func() {
		if u, ok := s.lineUnit(doc.Text, cur, h.Title); ok {
			units = append(units, u)
		}
	}

	for _, n := range doc.NodesIn(h.Loc.End, end) {
		switch n := n.(type) {
		case *wikitext.Text:
			off := n.Loc.Start
			for _, piece := range strings.SplitAfter(n.Value, "\n") {
				if strings.HasSuffix(piece, "\n") {
					cur.end = off + len(piece) - 1
					emit()
					cur = line{start: off + len(piece), end: off + len(piece)}
				} else {
					cur.end = off + len(piece)
				}
				off += len(piece)
			}
		case *wikitext.Heading:
			emit()
			cur = line{start: n.Loc.End, end: n.Loc.End}
		case *wikitext.Template:
			cur.end = n.Pos().End
			if n.Invocation.Malformed {
				cur.malformed = true
			}
			if !s.ignored[wikitext.CanonicalName(n.Invocation.Name)] {
				cur.templates = append(cur.templates, n.Invocation)
			}
		default:
			cur.end = n.Pos().End
		}
	}
	emit()
	return units
}

func (s *Segmenter) lineUnit(src string, l line, section string) (types.RawReferenceUnit, bool) {
	text := strings.TrimRight(src[l.start:l.end], "\r")
	if len(l.templates) == 0 && !wikitext.HasWordContent(wikitext.PlainText(text)) {
		return types.RawReferenceUnit{}, false
	}
	return types.RawReferenceUnit{
		Span:      types.Span{Start: l.start, End: l.start + len(text)},
		Text:      text,
		Templates: l.templates,
		IsGeneral: true,
		Section:   section,
		Malformed: l.malformed,
	}, true
}

func anyMalformed(tpls []types.TemplateInvocation) bool {
	for _, t := range tpls {
		if t.Malformed {
			return true
		}
	}
	return false
}
