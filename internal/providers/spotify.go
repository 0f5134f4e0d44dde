// Spotify catalog client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Album        spotifyAlbum        `json:"album"`
	DurationMS   int                 `json:"duration_ms"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyRecommendationsResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

// SpotifyClient talks to the Spotify Web API with per-user bearer tokens
// supplied by a [TokenSource].
type SpotifyClient struct {
	fetcher fetcher
	tokens  TokenSource
}

func NewSpotifyClient(tokens TokenSource, client *http.Client, logger *log.Logger) *SpotifyClient {
	return &SpotifyClient{
		fetcher: newFetcher(TagSpotify, client, logger),
		tokens:  tokens,
	}
}

func (c *SpotifyClient) Tag() Tag {
	return TagSpotify
}

// newRequest builds an authenticated GET request. The token source is
// consulted per attempt so a refresh between retries is picked up.
func (c *SpotifyClient) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	token, err := c.tokens(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, spotifyBaseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *SpotifyClient) Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	query := search.Build(parsed, search.DialectSpotify)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var resp spotifySearchResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Tracks.Items))
	for _, track := range resp.Tracks.Items {
		if r := mapSpotifyTrack(track, false); r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (c *SpotifyClient) Track(ctx context.Context, id string) (*SearchResult, error) {
	endpoint := "/tracks/" + url.PathEscape(id)

	var track spotifyTrack
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &track)
	if err != nil {
		return nil, err
	}

	result := mapSpotifyTrack(track, false)
	if result == nil {
		return nil, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	return result, nil
}

// Recommendations fetches catalog suggestions seeded on a track id.
// Authorization and availability failures on this endpoint mean "no
// recommendations" and yield an empty slice.
func (c *SpotifyClient) Recommendations(ctx context.Context, seedID string, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/recommendations?seed_tracks=%s&limit=%d", url.QueryEscape(seedID), limit)

	var resp spotifyRecommendationsResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		if toleratedStatus(err) {
			return nil, nil
		}
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Tracks))
	for _, track := range resp.Tracks {
		if r := mapSpotifyTrack(track, true); r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func mapSpotifyTrack(track spotifyTrack, recommended bool) *SearchResult {
	if track.ID == "" || track.Name == "" {
		return nil
	}

	result := SearchResult{
		ID:          track.ID,
		Title:       track.Name,
		Album:       track.Album.Name,
		URL:         track.ExternalURLs.Spotify,
		DurationMS:  track.DurationMS,
		Provider:    TagSpotify,
		Recommended: recommended,
	}

	if len(track.Artists) > 0 {
		names := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			names = append(names, artist.Name)
		}
		result.Artist = joinNames(names)
	}

	if len(track.Album.Images) > 0 {
		result.ImageURL = track.Album.Images[0].URL
	}

	if result.URL == "" {
		result.URL = "https://open.spotify.com/track/" + track.ID
	}

	return &result
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 50 {
		return 50
	}
	return limit
}
