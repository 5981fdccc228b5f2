// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps template invocations onto the canonical citation
// schema. The raw invocation is never modified; Normalize derives a new
// record from it.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// positionalFields maps positional parameters to canonical names per kind.
var positionalFields = map[types.TemplateKind]map[string]string{
	types.KindISBN:  {"1": FieldISBN},
	types.KindURL:   {"1": FieldURL, "2": FieldTitle},
	types.KindCiteQ: {"1": FieldWikidataID},
}

var personFieldRe = regexp.MustCompile(`^(author|editor|host|interviewer|translator)(\d+)_(first|last|full|link)$`)

// Normalizer derives NormalizedReference records. It holds immutable tables
// and is safe for concurrent use.
type Normalizer struct {
	aliases AliasTable
	kinds   KindTable
	dates   []DateParser
}

// New builds a Normalizer from the analysis configuration.
func New(cfg types.AnalysisConfig) (*Normalizer, error) {
	kinds, err := NewKindTable(cfg.TemplateKinds)
	if err != nil {
		return nil, fmt.Errorf("building kind table: %w", err)
	}
	return &Normalizer{
		aliases: NewAliasTable(cfg.MaxPersonNumber, cfg.ParamAliases),
		kinds:   kinds,
		dates:   DefaultDateParsers,
	}, nil
}

// Kind classifies a template name.
func (n *Normalizer) Kind(name string) types.TemplateKind {
	return n.kinds.Lookup(name)
}

// Normalize maps t onto the canonical schema. Duplicate parameters resolve
// last-wins on the canonical key. Unknown keys land in Extra under their
// authored name. Recoverable problems are returned as anomalies.
func (n *Normalizer) Normalize(t types.TemplateInvocation) (*types.NormalizedReference, []types.Anomaly) {
	kind := n.kinds.Lookup(t.Name)
	ref := &types.NormalizedReference{
		Kind:         kind,
		TemplateName: wikitext.CanonicalName(t.Name),
	}

	var anomalies []types.Anomaly
	if kind == types.KindOther {
		anomalies = append(anomalies, types.Anomaly{
			Kind:   types.AnomalyUnknownTemplate,
			Detail: ref.TemplateName,
		})
	}

	fields := make(map[string]string)
	extra := make(map[string]string)
	for _, p := range t.Params {
		value := CleanValue(p.Value)
		if canonical, ok := n.canonicalKey(kind, p); ok {
			fields[canonical] = value
			continue
		}
		extra[p.Key] = value
	}

	persons := make(map[types.PersonRole]map[int]*types.Person)
	for key, value := range fields {
		if value == "" {
			continue
		}
		if m := personFieldRe.FindStringSubmatch(key); m != nil {
			addPerson(persons, m, value)
			continue
		}
		if !assignField(ref, key, value) {
			extra[key] = value
		}
	}

	anomalies = append(anomalies, n.assignDates(ref, fields)...)

	ref.Authors = personList(persons[types.RoleAuthor])
	ref.Editors = personList(persons[types.RoleEditor])
	ref.Hosts = personList(persons[types.RoleHost])
	ref.Interviewers = personList(persons[types.RoleInterviewer])
	ref.Translators = personList(persons[types.RoleTranslator])

	for k, v := range extra {
		if v == "" {
			delete(extra, k)
		}
	}
	if len(extra) > 0 {
		ref.Extra = extra
	}
	return ref, anomalies
}

// CleanValue trims a raw parameter value, drops comments and applies NFC.
func CleanValue(v string) string {
	return norm.NFC.String(strings.TrimSpace(wikitext.StripComments(v)))
}

func (n *Normalizer) canonicalKey(kind types.TemplateKind, p types.Param) (string, bool) {
	if pf, ok := positionalFields[kind]; ok {
		if c, ok := pf[p.Key]; ok {
			return c, true
		}
	}
	if p.Positional {
		return "", false
	}
	return n.aliases.Canonical(p.Key)
}

// assignField sets a canonical non-date, non-person field. It reports false
// for names the record has no field for.
func assignField(ref *types.NormalizedReference, key, value string) bool {
	switch key {
	case FieldTitle:
		ref.Title = value
	case FieldURL:
		ref.URL = value
	case FieldArchiveURL:
		ref.ArchiveURL = value
	case FieldChapterURL:
		ref.ChapterURL = value
	case FieldConferenceURL:
		ref.ConferenceURL = value
	case FieldLayURL:
		ref.LayURL = value
	case FieldTranscriptURL:
		ref.TranscriptURL = value
	case FieldDOI:
		ref.DOI = value
	case FieldISBN:
		ref.ISBN = value
	case FieldPMID:
		ref.PMID = value
	case FieldOCLC:
		ref.OCLC = value
	case FieldWikidataID:
		ref.WikidataID = value
	case FieldPublisher:
		ref.Publisher = value
	case FieldLocation:
		ref.Location = value
	case FieldPeriodical:
		ref.Periodical = value
	case FieldAccessDate, FieldDate, FieldYear, FieldArchiveDate:
		// handled by assignDates
	default:
		return false
	}
	return true
}

func (n *Normalizer) assignDates(ref *types.NormalizedReference, fields map[string]string) []types.Anomaly {
	var anomalies []types.Anomaly
	parse := func(field string) *time.Time {
		raw := fields[field]
		if raw == "" {
			return nil
		}
		t, ok := ParseDate(raw, n.dates)
		if !ok {
			anomalies = append(anomalies, types.Anomaly{
				Kind:   types.AnomalyUnparsedDate,
				Detail: fmt.Sprintf("%s=%q", field, raw),
			})
			return nil
		}
		return &t
	}

	ref.AccessDate = parse(FieldAccessDate)
	ref.ArchiveDate = parse(FieldArchiveDate)
	if fields[FieldDate] != "" {
		ref.PublicationDate = parse(FieldDate)
	} else {
		ref.PublicationDate = parse(FieldYear)
	}
	return anomalies
}

func addPerson(persons map[types.PersonRole]map[int]*types.Person, m []string, value string) {
	role := types.PersonRole(m[1])
	num, _ := strconv.Atoi(m[2])
	if persons[role] == nil {
		persons[role] = make(map[int]*types.Person)
	}
	p := persons[role][num]
	if p == nil {
		p = &types.Person{Role: role, Number: num}
		persons[role][num] = p
	}
	switch m[3] {
	case "first":
		p.First = value
	case "last":
		p.Last = value
	case "full":
		p.Full = value
	case "link":
		p.Link = value
	}
}

func personList(byNumber map[int]*types.Person) []types.Person {
	if len(byNumber) == 0 {
		return nil
	}
	out := make([]types.Person, 0, len(byNumber))
	for _, p := range byNumber {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
