// package providers implements clients for the external music catalogs
// consulted by the aggregated search: Spotify, YouTube, MusicBrainz, Deezer.
//
// All clients share uniform retry/timeout semantics (see retry.go) and map
// catalog responses into [SearchResult] values with durations normalized to
// milliseconds.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
)

// Tag identifies one of the supported catalogs.
type Tag string

const (
	TagSpotify     Tag = "spotify"
	TagYouTube     Tag = "youtube"
	TagMusicBrainz Tag = "musicbrainz"
	TagDeezer      Tag = "deezer"
)

// AllTags lists the supported catalogs in their default priority order.
var AllTags = []Tag{TagSpotify, TagYouTube, TagMusicBrainz, TagDeezer}

// ParseTag validates a provider name from settings or user input.
func ParseTag(name string) (Tag, error) {
	for _, tag := range AllTags {
		if string(tag) == name {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnknownProvider, name)
}

// SearchResult represents one matched track from a catalog. Optional fields
// (Artist, Album, ImageURL, DurationMS) are zero-valued when the catalog did
// not supply them.
type SearchResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	URL         string `json:"url"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	Provider    Tag    `json:"provider"`
	Recommended bool   `json:"recommended,omitempty"`
}

// TokenSource supplies a valid bearer token for catalogs requiring per-user
// OAuth. Implementations are provided by the token manager.
type TokenSource func(ctx context.Context) (string, error)

// Client is the capability every catalog implementation provides. The
// aggregator depends only on this interface.
type Client interface {
	// Tag returns the catalog identifier.
	Tag() Tag

	// Search returns matched tracks for the parsed query, capped at limit.
	Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]SearchResult, error)

	// Track retrieves a single track by its provider-native id.
	Track(ctx context.Context, id string) (*SearchResult, error)

	// Recommendations returns catalog-suggested tracks seeded from a track
	// id, flagged as recommendations. Catalogs without a recommendation
	// endpoint return an error wrapping [shared.ErrNoRecommendations];
	// tolerated authorization failures yield an empty slice instead.
	Recommendations(ctx context.Context, seedID string, limit int) ([]SearchResult, error)
}

// Error is a typed provider failure carrying the catalog tag, the taxonomy
// sentinel it belongs to, and the underlying cause.
type Error struct {
	Provider Tag
	Kind     error
	Status   int
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
