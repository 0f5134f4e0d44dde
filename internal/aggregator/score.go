package aggregator

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/search"
)

// Additive relevance signals. The absolute values only matter relative to
// each other: exact full-field matches outrank partial matches, which
// outrank bare containment, and missing metadata is never penalized.
const (
	scoreTitleExact    = 100
	scoreTitlePrefix   = 60
	scoreTitleContains = 40

	scoreArtistExact    = 50
	scoreArtistContains = 30
	scoreArtistPerWord  = 5

	scoreAlbumContains = 15

	scoreArtistAndImage = 5
	scoreHasAlbum       = 3

	scoreFuzzyTitle = 2
)

// providerBonus prefers catalogs with consistently rich metadata.
var providerBonus = map[providers.Tag]int{
	providers.TagSpotify: 4,
	providers.TagDeezer:  2,
}

// Score rates how well a result matches the parsed query.
func Score(result providers.SearchResult, parsed search.ParsedQuery) int {
	queryTitle := normalize(parsed.Title)
	if queryTitle == "" {
		queryTitle = normalize(parsed.Raw)
	}
	queryArtist := normalize(parsed.Artist)
	queryAlbum := normalize(parsed.Album)

	title := normalize(result.Title)
	artist := normalize(result.Artist)
	album := normalize(result.Album)

	score := 0

	if queryTitle != "" {
		switch {
		case title == queryTitle:
			score += scoreTitleExact
		case strings.HasPrefix(title, queryTitle):
			score += scoreTitlePrefix
		case strings.Contains(title, queryTitle):
			score += scoreTitleContains
		}
		if fuzzy.MatchFold(queryTitle, title) {
			score += scoreFuzzyTitle
		}
	}

	if queryArtist != "" && artist != "" {
		switch {
		case artist == queryArtist:
			score += scoreArtistExact
		case strings.Contains(artist, queryArtist) || strings.Contains(queryArtist, artist):
			score += scoreArtistContains
		}
		for _, word := range strings.Fields(queryArtist) {
			if strings.Contains(artist, word) {
				score += scoreArtistPerWord
			}
		}
	}

	if queryAlbum != "" && album != "" && strings.Contains(album, queryAlbum) {
		score += scoreAlbumContains
	}

	if result.Artist != "" && result.ImageURL != "" {
		score += scoreArtistAndImage
	}
	if result.Album != "" {
		score += scoreHasAlbum
	}

	score += providerBonus[result.Provider]

	return score
}

type scored struct {
	result providers.SearchResult
	score  int
}

// sortScored orders results by descending score, then presence of artist,
// then presence of image, then title ascending case-insensitive.
func sortScored(items []scored) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if (a.result.Artist != "") != (b.result.Artist != "") {
			return a.result.Artist != ""
		}
		if (a.result.ImageURL != "") != (b.result.ImageURL != "") {
			return a.result.ImageURL != ""
		}
		return strings.ToLower(a.result.Title) < strings.ToLower(b.result.Title)
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
