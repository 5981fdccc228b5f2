// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/wikicite/internal/wikitext"
	"github.com/pdiddy/wikicite/pkg/types"
)

// DefaultMaxPersonNumber bounds numbered person parameters when the
// configuration does not set a limit.
const DefaultMaxPersonNumber = 20

// defaultKinds maps canonical template names to kinds.
var defaultKinds = map[string]types.TemplateKind{
	"cite book":       types.KindCiteBook,
	"cite journal":    types.KindCiteJournal,
	"cite paper":      types.KindCiteJournal,
	"cite web":        types.KindCiteWeb,
	"cite website":    types.KindCiteWeb,
	"cite url":        types.KindCiteWeb,
	"web cite":        types.KindCiteWeb,
	"citation":        types.KindCitation,
	"cite q":          types.KindCiteQ,
	"isbn":            types.KindISBN,
	"url":             types.KindURL,
	"bare url inline": types.KindBareURL,
	"bare url":        types.KindBareURL,
	"bare url pdf":    types.KindBareURL,
	"bare url image":  types.KindBareURL,
	"bare url plain":  types.KindBareURL,
}

// KindTable classifies template names. The zero value maps every name to
// KindOther. It is never mutated after construction.
type KindTable struct {
	kinds map[string]types.TemplateKind
}

// NewKindTable returns the default kind table extended with overrides, keyed
// by template name and valued by kind name ("cite_web", "isbn", ...).
func NewKindTable(overrides map[string]string) (KindTable, error) {
	kinds := make(map[string]types.TemplateKind, len(defaultKinds)+len(overrides))
	for name, kind := range defaultKinds {
		kinds[name] = kind
	}
	for name, kind := range overrides {
		k := types.TemplateKind(strings.ToLower(strings.TrimSpace(kind)))
		if !validKind(k) {
			return KindTable{}, fmt.Errorf("template %q: unknown kind %q", name, kind)
		}
		kinds[wikitext.CanonicalName(name)] = k
	}
	return KindTable{kinds: kinds}, nil
}

// Lookup returns the kind for a template name as authored.
func (t KindTable) Lookup(name string) types.TemplateKind {
	if k, ok := t.kinds[wikitext.CanonicalName(name)]; ok {
		return k
	}
	return types.KindOther
}

func validKind(k types.TemplateKind) bool {
	switch k {
	case types.KindCiteBook, types.KindCiteJournal, types.KindCiteWeb, types.KindCitation,
		types.KindCiteQ, types.KindISBN, types.KindURL, types.KindBareURL, types.KindOther:
		return true
	}
	return false
}

// Canonical field names.
const (
	FieldTitle         = "title"
	FieldURL           = "url"
	FieldArchiveURL    = "archive_url"
	FieldChapterURL    = "chapter_url"
	FieldConferenceURL = "conference_url"
	FieldLayURL        = "lay_url"
	FieldTranscriptURL = "transcript_url"
	FieldAccessDate    = "access_date"
	FieldDate          = "date"
	FieldYear          = "year"
	FieldArchiveDate   = "archive_date"
	FieldDOI           = "doi"
	FieldISBN          = "isbn"
	FieldPMID          = "pmid"
	FieldOCLC          = "oclc"
	FieldWikidataID    = "wikidata_id"
	FieldPublisher     = "publisher"
	FieldLocation      = "location"
	FieldPeriodical    = "periodical"
)

var defaultAliases = map[string]string{
	"title": FieldTitle,

	"url": FieldURL,

	"archive-url": FieldArchiveURL,
	"archiveurl":  FieldArchiveURL,
	"archive_url": FieldArchiveURL,

	"chapter-url": FieldChapterURL,
	"chapterurl":  FieldChapterURL,
	"chapter_url": FieldChapterURL,

	"conference-url": FieldConferenceURL,
	"conferenceurl":  FieldConferenceURL,
	"conference_url": FieldConferenceURL,

	"lay-url": FieldLayURL,
	"layurl":  FieldLayURL,
	"lay_url": FieldLayURL,

	"transcript-url": FieldTranscriptURL,
	"transcripturl":  FieldTranscriptURL,
	"transcript_url": FieldTranscriptURL,

	"access-date": FieldAccessDate,
	"accessdate":  FieldAccessDate,
	"access_date": FieldAccessDate,

	"date":             FieldDate,
	"publication-date": FieldDate,
	"publication_date": FieldDate,
	"publicationdate":  FieldDate,
	"year":             FieldYear,

	"archive-date": FieldArchiveDate,
	"archivedate":  FieldArchiveDate,
	"archive_date": FieldArchiveDate,

	"doi":    FieldDOI,
	"isbn":   FieldISBN,
	"isbn13": FieldISBN,
	"pmid":   FieldPMID,
	"oclc":   FieldOCLC,

	"qid":         FieldWikidataID,
	"wikidata":    FieldWikidataID,
	"wikidata_id": FieldWikidataID,

	"publisher": FieldPublisher,

	"location":          FieldLocation,
	"place":             FieldLocation,
	"publication-place": FieldLocation,
	"publication_place": FieldLocation,

	"journal":    FieldPeriodical,
	"work":       FieldPeriodical,
	"website":    FieldPeriodical,
	"newspaper":  FieldPeriodical,
	"magazine":   FieldPeriodical,
	"periodical": FieldPeriodical,
}

// AliasTable maps authored parameter keys to canonical field names. It is
// never mutated after construction.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable builds the default aliases, numbered person keys up to
// maxPerson, and the given overrides (raw key to canonical name).
func NewAliasTable(maxPerson int, overrides map[string]string) AliasTable {
	if maxPerson <= 0 {
		maxPerson = DefaultMaxPersonNumber
	}
	aliases := make(map[string]string, len(defaultAliases)+maxPerson*40)
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	addPersonAliases(aliases, maxPerson)
	for k, v := range overrides {
		aliases[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return AliasTable{aliases: aliases}
}

// Canonical returns the canonical name for an authored key. Exact matches win
// over case-insensitive ones.
func (a AliasTable) Canonical(key string) (string, bool) {
	if c, ok := a.aliases[key]; ok {
		return c, true
	}
	c, ok := a.aliases[strings.ToLower(key)]
	return c, ok
}

// personKeyPatterns lists the authored spellings of each name part. "#" is
// replaced by the person number; "role" by the role name.
var personKeyPatterns = map[string][]string{
	"last":  {"role#-last", "role-last#", "role#_last", "role#last"},
	"first": {"role#-first", "role-first#", "role#_first", "role#first"},
	"full":  {"role#"},
	"link":  {"role#-link", "role-link#", "role#link", "rolelink#", "role#_link"},
}

// authorOnlyPatterns are the bare spellings that imply the author role.
var authorOnlyPatterns = map[string][]string{
	"last":  {"last#", "surname#"},
	"first": {"first#", "given#"},
}

var personRoles = []types.PersonRole{
	types.RoleAuthor,
	types.RoleEditor,
	types.RoleHost,
	types.RoleInterviewer,
	types.RoleTranslator,
}

func addPersonAliases(aliases map[string]string, maxPerson int) {
	add := func(pattern, role string, n int, part string) {
		canonical := personField(role, n, part)
		key := strings.ReplaceAll(pattern, "role", role)
		aliases[strings.ReplaceAll(key, "#", strconv.Itoa(n))] = canonical
		if n == 1 {
			aliases[strings.ReplaceAll(key, "#", "")] = canonical
		}
	}
	for n := 1; n <= maxPerson; n++ {
		for _, role := range personRoles {
			for part, patterns := range personKeyPatterns {
				for _, p := range patterns {
					add(p, string(role), n, part)
				}
			}
		}
		for part, patterns := range authorOnlyPatterns {
			for _, p := range patterns {
				add(p, string(types.RoleAuthor), n, part)
			}
		}
	}
}

func personField(role string, n int, part string) string {
	return role + strconv.Itoa(n) + "_" + part
}
