// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"time"
)

// DateParser turns a cleaned date string into a calendar date.
type DateParser func(s string) (time.Time, bool)

// Layout returns a DateParser for a time.Parse layout.
func Layout(layout string) DateParser {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// DefaultDateParsers are tried in order; the first success wins.
var DefaultDateParsers = []DateParser{
	Layout("2006-01-02"),
	Layout("January 2, 2006"),
	Layout("Jan 2, 2006"),
	Layout("2 January 2006"),
	Layout("2 Jan 2006"),
	Layout("January 2006"),
	Layout("Jan 2006"),
	Layout("2006"),
}

// ParseDate collapses whitespace in s and returns the result of the first
// parser that accepts it.
func ParseDate(s string, parsers []DateParser) (time.Time, bool) {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "&nbsp;", " ")), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, p := range parsers {
		if t, ok := p(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
