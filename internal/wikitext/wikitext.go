// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikitext turns article markup into a flat tree of top-level nodes:
// text, comments, headings, citation tags and template invocations. It is a
// tolerant tokenizer, not a renderer. Parameter values are kept exactly as
// authored, duplicates included; resolving duplicates is the caller's job.
package wikitext

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/pdiddy/wikicite/pkg/types"
)

// MaxNestingDepth bounds template nesting. Deeper input is rejected.
const MaxNestingDepth = 64

var (
	// ErrInvalidUTF8 is returned for markup that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("markup is not valid UTF-8")

	// ErrNestingTooDeep is returned when templates nest beyond MaxNestingDepth.
	ErrNestingTooDeep = errors.New("template nesting too deep")
)

// Node is one element of a parsed document.
type Node interface {
	Pos() types.Span
}

// Text is a run of markup that is none of the other node kinds.
type Text struct {
	Loc   types.Span
	Value string
}

// Comment is an HTML-style <!-- --> comment.
type Comment struct {
	Loc types.Span
}

// Heading is a section heading line such as "== References ==".
type Heading struct {
	Loc   types.Span
	Level int
	Title string
}

// Tag is a <ref>, <references> or <nowiki> element.
type Tag struct {
	Loc         types.Span
	Name        string
	Attrs       map[string]string
	SelfClosing bool

	// Unclosed is set when no closing tag followed the opening tag. Loc then
	// covers the opening tag only.
	Unclosed bool

	Body     string
	BodyLoc  types.Span
	Children []Node
}

// Template is a {{name|...}} invocation.
type Template struct {
	Invocation types.TemplateInvocation
}

func (n *Text) Pos() types.Span     { return n.Loc }
func (n *Comment) Pos() types.Span  { return n.Loc }
func (n *Heading) Pos() types.Span  { return n.Loc }
func (n *Tag) Pos() types.Span      { return n.Loc }
func (n *Template) Pos() types.Span { return n.Invocation.Span }

// Document is the parse result for one article.
type Document struct {
	Text  string
	Nodes []Node
}

// Parse tokenizes article markup. Only input that is not valid UTF-8 or that
// nests templates beyond MaxNestingDepth fails; everything else yields a
// document, with unterminated constructs flagged on their nodes.
func Parse(text string) (*Document, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	p := &parser{src: text}
	nodes, err := p.parseNodes(0, len(text), true)
	if err != nil {
		return nil, err
	}
	return &Document{Text: text, Nodes: nodes}, nil
}

// ParseFragment tokenizes a piece of markup such as a tag body. Headings are
// not recognized. Offsets are relative to the fragment.
func ParseFragment(text string) ([]Node, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	p := &parser{src: text}
	return p.parseNodes(0, len(text), false)
}

// Refs returns every <ref> tag in source order, including those nested in
// <references> blocks.
func (d *Document) Refs() []*Tag {
	var refs []*Tag
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			tag, ok := n.(*Tag)
			if !ok {
				continue
			}
			switch tag.Name {
			case "ref":
				refs = append(refs, tag)
			case "references":
				walk(tag.Children)
			}
		}
	}
	walk(d.Nodes)
	return refs
}

// Headings returns the top-level headings in source order.
func (d *Document) Headings() []*Heading {
	var hs []*Heading
	for _, n := range d.Nodes {
		if h, ok := n.(*Heading); ok {
			hs = append(hs, h)
		}
	}
	return hs
}

// NodesIn returns the top-level nodes that start inside [start, end).
func (d *Document) NodesIn(start, end int) []Node {
	var out []Node
	for _, n := range d.Nodes {
		pos := n.Pos()
		if pos.Start >= start && pos.Start < end {
			out = append(out, n)
		}
	}
	return out
}

// Templates returns the template invocations among nodes, in order.
func Templates(nodes []Node) []types.TemplateInvocation {
	var out []types.TemplateInvocation
	for _, n := range nodes {
		if t, ok := n.(*Template); ok {
			out = append(out, t.Invocation)
		}
	}
	return out
}

var commentRe = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)

// StripComments removes <!-- --> comments. An unterminated comment runs to
// the end of the input.
func StripComments(s string) string {
	if !strings.Contains(s, "<!--") {
		return s
	}
	return commentRe.ReplaceAllString(s, "")
}

// PlainText returns the text of s with comments, templates and tags removed.
// Markup that cannot be tokenized falls back to comment stripping only.
func PlainText(s string) string {
	nodes, err := ParseFragment(s)
	if err != nil {
		return StripComments(s)
	}
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			b.WriteString(n.Value)
		case *Tag:
			if n.Name == "nowiki" {
				b.WriteString(n.Body)
			}
		}
	}
	return b.String()
}

// HasWordContent reports whether s contains a letter or a digit.
func HasWordContent(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

type parser struct {
	src   string
	depth int
}

var headingRe = regexp.MustCompile(`^(={1,6})(.+?)(={1,6})[ \t]*\r?$`)

// parseNodes scans src[start:end]. Headings are only recognized when top is set.
func (p *parser) parseNodes(start, end int, top bool) ([]Node, error) {
	var nodes []Node
	textStart := start

	flush := func(at int) {
		if at > textStart {
			nodes = append(nodes, &Text{
				Loc:   types.Span{Start: textStart, End: at},
				Value: p.src[textStart:at],
			})
		}
	}

	i := start
	for i < end {
		c := p.src[i]

		if top && c == '=' && (i == start || p.src[i-1] == '\n') {
			lineEnd := strings.IndexByte(p.src[i:end], '\n')
			if lineEnd < 0 {
				lineEnd = end
			} else {
				lineEnd += i
			}
			if h := parseHeading(p.src[i:lineEnd]); h != nil {
				flush(i)
				h.Loc = types.Span{Start: i, End: lineEnd}
				nodes = append(nodes, h)
				i = lineEnd
				textStart = i
				continue
			}
		}

		switch {
		case c == '<' && strings.HasPrefix(p.src[i:end], "<!--"):
			flush(i)
			closeAt := strings.Index(p.src[i+4:end], "-->")
			next := end
			if closeAt >= 0 {
				next = i + 4 + closeAt + 3
			}
			nodes = append(nodes, &Comment{Loc: types.Span{Start: i, End: next}})
			i = next
			textStart = i
			continue

		case c == '<':
			tag, next, err := p.parseTag(i, end)
			if err != nil {
				return nil, err
			}
			if tag != nil {
				flush(i)
				nodes = append(nodes, tag)
				i = next
				textStart = i
				continue
			}

		case c == '{' && strings.HasPrefix(p.src[i:end], "{{"):
			tpl, next, err := p.parseTemplate(i, end)
			if err != nil {
				return nil, err
			}
			flush(i)
			nodes = append(nodes, tpl)
			i = next
			textStart = i
			continue
		}
		i++
	}
	flush(end)
	return nodes, nil
}

func parseHeading(line string) *Heading {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	title := strings.TrimSpace(StripComments(m[2]))
	if title == "" {
		return nil
	}
	level := len(m[1])
	if len(m[3]) < level {
		level = len(m[3])
	}
	return &Heading{Level: level, Title: title}
}

// knownTags are the element names the tokenizer understands.
var knownTags = []string{"references", "ref", "nowiki"}

var closingTagRe = map[string]*regexp.Regexp{
	"ref":        regexp.MustCompile(`(?i)</ref\s*>`),
	"references": regexp.MustCompile(`(?i)</references\s*>`),
	"nowiki":     regexp.MustCompile(`(?i)</nowiki\s*>`),
}

// parseTag recognizes a known element starting at i. It returns a nil tag
// when the markup at i is not one.
func (p *parser) parseTag(i, end int) (*Tag, int, error) {
	name := matchTagName(p.src[i+1 : end])
	if name == "" {
		return nil, 0, nil
	}

	closeAt := findTagEnd(p.src, i+1+len(name), end)
	if closeAt < 0 {
		return nil, 0, nil
	}
	open := p.src[i : closeAt+1]
	inner := strings.TrimSpace(open[:len(open)-1])
	tag := &Tag{
		Name:        name,
		Attrs:       parseAttrs(open),
		SelfClosing: strings.HasSuffix(inner, "/"),
	}

	if tag.SelfClosing {
		tag.Loc = types.Span{Start: i, End: closeAt + 1}
		tag.BodyLoc = types.Span{Start: closeAt + 1, End: closeAt + 1}
		return tag, closeAt + 1, nil
	}

	bodyStart := closeAt + 1
	loc := closingTagRe[name].FindStringIndex(p.src[bodyStart:end])
	if loc == nil {
		tag.Unclosed = true
		tag.Loc = types.Span{Start: i, End: bodyStart}
		tag.BodyLoc = types.Span{Start: bodyStart, End: bodyStart}
		return tag, bodyStart, nil
	}

	bodyEnd := bodyStart + loc[0]
	tag.Loc = types.Span{Start: i, End: bodyStart + loc[1]}
	tag.BodyLoc = types.Span{Start: bodyStart, End: bodyEnd}
	tag.Body = p.src[bodyStart:bodyEnd]

	if name != "nowiki" {
		children, err := p.parseNodes(bodyStart, bodyEnd, false)
		if err != nil {
			return nil, 0, err
		}
		tag.Children = children
	}
	return tag, tag.Loc.End, nil
}

// matchTagName returns the known element name at the start of s, which
// follows a '<'.
func matchTagName(s string) string {
	for _, name := range knownTags {
		if len(s) <= len(name) || !strings.EqualFold(s[:len(name)], name) {
			continue
		}
		switch s[len(name)] {
		case ' ', '\t', '\n', '\r', '/', '>':
			return name
		}
	}
	return ""
}

// findTagEnd returns the index of the '>' closing an opening tag, honoring
// quoted attribute values, or -1.
func findTagEnd(src string, from, end int) int {
	var quote byte
	for j := from; j < end; j++ {
		c := src[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j
		case c == '<' || c == '\n' && strings.HasPrefix(src[j+1:end], "\n"):
			return -1
		}
	}
	return -1
}

// parseAttrs reads the attributes of an opening tag with the HTML tokenizer.
func parseAttrs(open string) map[string]string {
	s := strings.TrimSuffix(open, ">")
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, "/") + ">"

	attrs := make(map[string]string)
	z := html.NewTokenizer(strings.NewReader(s))
	switch z.Next() {
	case html.StartTagToken, html.SelfClosingTagToken:
	default:
		return attrs
	}
	_, more := z.TagName()
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = strings.TrimSpace(string(val))
	}
	return attrs
}

// parseTemplate reads the template opening at i. An unterminated template is
// returned as a malformed two-byte node so scanning resumes right after the
// braces.
func (p *parser) parseTemplate(i, end int) (*Template, int, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNestingDepth {
		return nil, 0, fmt.Errorf("%w: more than %d levels at offset %d", ErrNestingTooDeep, MaxNestingDepth, i)
	}

	seps, eqs, closeAt, err := p.scanTemplate(i+2, end)
	if err != nil {
		return nil, 0, err
	}
	if closeAt < 0 {
		nameEnd := strings.IndexAny(p.src[i+2:end], "|\n")
		if nameEnd < 0 {
			nameEnd = end - i - 2
		}
		return &Template{Invocation: types.TemplateInvocation{
			Name:      strings.TrimSpace(StripComments(p.src[i+2 : i+2+nameEnd])),
			Raw:       p.src[i : i+2],
			Span:      types.Span{Start: i, End: i + 2},
			Malformed: true,
		}}, i + 2, nil
	}

	bounds := append([]int{i + 1}, seps...)
	bounds = append(bounds, closeAt)

	inv := types.TemplateInvocation{
		Name: strings.TrimSpace(StripComments(p.src[i+2 : bounds[1]])),
		Raw:  p.src[i : closeAt+2],
		Span: types.Span{Start: i, End: closeAt + 2},
	}

	positional := 0
	for s := 1; s < len(bounds)-1; s++ {
		segStart, segEnd := bounds[s]+1, bounds[s+1]
		if eq := eqs[s-1]; eq >= 0 {
			inv.Params = append(inv.Params, types.Param{
				Key:   strings.TrimSpace(StripComments(p.src[segStart:eq])),
				Value: p.src[eq+1 : segEnd],
			})
			continue
		}
		positional++
		inv.Params = append(inv.Params, types.Param{
			Key:        strconv.Itoa(positional),
			Value:      p.src[segStart:segEnd],
			Positional: true,
		})
	}
	return &Template{Invocation: inv}, closeAt + 2, nil
}

// scanTemplate walks a template body from 'from'. It returns the offsets of
// the top-level '|' separators, the first top-level '=' of each parameter
// segment (-1 when absent), and the offset of the closing "}}" (-1 when
// unterminated).
func (p *parser) scanTemplate(from, end int) (seps, eqs []int, closeAt int, err error) {
	linkDepth := 0
	k := from
	for k < end {
		rest := p.src[k:end]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			c := strings.Index(rest[4:], "-->")
			if c < 0 {
				return seps, eqs, -1, nil
			}
			k += 4 + c + 3
			continue
		case len(rest) > 7 && strings.EqualFold(rest[:7], "<nowiki"):
			if loc := closingTagRe["nowiki"].FindStringIndex(rest); loc != nil {
				k += loc[1]
				continue
			}
		case strings.HasPrefix(rest, "{{"):
			p.depth++
			if p.depth > MaxNestingDepth {
				p.depth--
				return nil, nil, -1, fmt.Errorf("%w: more than %d levels at offset %d", ErrNestingTooDeep, MaxNestingDepth, k)
			}
			_, _, nested, err := p.scanTemplate(k+2, end)
			p.depth--
			if err != nil {
				return nil, nil, -1, err
			}
			if nested < 0 {
				// The nested body ran to end without a closing "}}", so
				// nothing after it can close this template either.
				return seps, eqs, -1, nil
			}
			k = nested + 2
			continue
		case strings.HasPrefix(rest, "}}"):
			return seps, eqs, k, nil
		case strings.HasPrefix(rest, "[["):
			linkDepth++
			k += 2
			continue
		case strings.HasPrefix(rest, "]]") && linkDepth > 0:
			linkDepth--
			k += 2
			continue
		case rest[0] == '|' && linkDepth == 0:
			seps = append(seps, k)
			eqs = append(eqs, -1)
		case rest[0] == '=' && linkDepth == 0 && len(eqs) > 0 && eqs[len(eqs)-1] < 0:
			eqs[len(eqs)-1] = k
		}
		k++
	}
	return seps, eqs, -1, nil
}

// CanonicalName folds a template name for comparison: comments dropped,
// lower-cased, underscores as spaces, whitespace collapsed and any
// "Template:" namespace prefix removed.
func CanonicalName(name string) string {
	n := strings.ToLower(StripComments(name))
	n = strings.ReplaceAll(n, "_", " ")
	n = strings.Join(strings.Fields(n), " ")
	n = strings.TrimPrefix(n, "template:")
	return strings.TrimSpace(n)
}
