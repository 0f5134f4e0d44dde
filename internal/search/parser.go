// package search turns free-text wish queries into structured hints and
// renders those hints into provider-specific query dialects.
package search

import (
	"regexp"
	"strings"
)

// ParsedQuery is the structured decomposition of a raw search string. Empty
// fields mean "not detected"; Raw always holds the original input.
type ParsedQuery struct {
	Title  string
	Artist string
	Album  string
	Raw    string
}

// Structured reports whether any structured field was detected.
func (p ParsedQuery) Structured() bool {
	return p.Title != "" || p.Artist != "" || p.Album != ""
}

var quotedSegment = regexp.MustCompile(`"([^"]*)"`)

// separators are recognized between title and artist, checked longest first
// so that "von der" is not split at the inner "von". The German forms stem
// from the portal's primary audience; "by" covers English queries.
var separators = []string{"von der", "von dem", "vom", "von", "by"}

// Parse decomposes a raw search string into title/artist/album hints.
//
// Quoted form wins: `"title" "artist" "album"` (third segment optional; with
// exactly two quoted segments, leftover unquoted text becomes the album).
// Otherwise a separator token splits title from artist, and failing that the
// last word is taken as the artist. This is a heuristic, not a guarantee;
// ranking compensates for misattributed words via substring scoring.
func Parse(raw string) ParsedQuery {
	parsed := ParsedQuery{Raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return parsed
	}

	if quoted := quotedSegment.FindAllStringSubmatch(text, -1); len(quoted) >= 2 {
		parsed.Title = strings.TrimSpace(quoted[0][1])
		parsed.Artist = strings.TrimSpace(quoted[1][1])
		if len(quoted) >= 3 {
			parsed.Album = strings.TrimSpace(quoted[2][1])
		} else if rest := strings.TrimSpace(quotedSegment.ReplaceAllString(text, " ")); rest != "" {
			parsed.Album = rest
		}
		return parsed
	}

	lower := strings.ToLower(text)
	for _, sep := range separators {
		idx := strings.LastIndex(lower, " "+sep+" ")
		if idx < 0 {
			continue
		}
		title := strings.TrimSpace(text[:idx])
		artist := strings.TrimSpace(text[idx+len(sep)+2:])
		if title == "" || artist == "" {
			continue
		}
		parsed.Title = title
		parsed.Artist = artist
		return parsed
	}

	words := strings.Fields(text)
	if len(words) >= 2 {
		parsed.Title = strings.Join(words[:len(words)-1], " ")
		parsed.Artist = words[len(words)-1]
	} else {
		parsed.Title = text
	}

	return parsed
}
