package search

import (
	"fmt"
	"strings"
)

// Dialect selects a provider-specific query syntax.
type Dialect int

const (
	// DialectSpotify emits space-separated field:"value" clauses.
	DialectSpotify Dialect = iota
	// DialectLucene emits AND-combined Lucene clauses (MusicBrainz).
	DialectLucene
	// DialectDeezer emits space-separated field:"value" clauses with quotes
	// stripped from values.
	DialectDeezer
	// DialectPlain emits a natural-language concatenation biased towards
	// canonical recordings (YouTube).
	DialectPlain
)

// Build renders a parsed query in the given provider dialect. When nothing
// structured was parsed, every dialect falls back to the raw string verbatim.
func Build(p ParsedQuery, d Dialect) string {
	if !p.Structured() {
		return p.Raw
	}

	switch d {
	case DialectSpotify:
		var clauses []string
		if p.Title != "" {
			clauses = append(clauses, fmt.Sprintf("track:%q", stripQuotes(p.Title)))
		} else if p.Artist == "" {
			clauses = append(clauses, fmt.Sprintf("track:%q", stripQuotes(p.Raw)))
		}
		if p.Artist != "" {
			clauses = append(clauses, fmt.Sprintf("artist:%q", stripQuotes(p.Artist)))
		}
		if p.Album != "" {
			clauses = append(clauses, fmt.Sprintf("album:%q", stripQuotes(p.Album)))
		}
		return strings.Join(clauses, " ")

	case DialectLucene:
		var clauses []string
		if p.Title != "" {
			clauses = append(clauses, fmt.Sprintf("recording:%q", stripQuotes(p.Title)))
		}
		if p.Artist != "" {
			clauses = append(clauses, fmt.Sprintf("artist:%q", stripQuotes(p.Artist)))
		}
		if p.Album != "" {
			clauses = append(clauses, fmt.Sprintf("release:%q", stripQuotes(p.Album)))
		}
		return strings.Join(clauses, " AND ")

	case DialectDeezer:
		var clauses []string
		if p.Title != "" {
			clauses = append(clauses, `track:"`+stripQuotes(p.Title)+`"`)
		}
		if p.Artist != "" {
			clauses = append(clauses, `artist:"`+stripQuotes(p.Artist)+`"`)
		}
		if p.Album != "" {
			clauses = append(clauses, `album:"`+stripQuotes(p.Album)+`"`)
		}
		return strings.Join(clauses, " ")

	case DialectPlain:
		parts := make([]string, 0, 4)
		for _, field := range []string{p.Title, p.Artist, p.Album} {
			if field != "" {
				parts = append(parts, field)
			}
		}
		parts = append(parts, "official audio")
		return strings.Join(parts, " ")
	}

	return p.Raw
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
