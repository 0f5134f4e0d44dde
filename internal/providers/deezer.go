// Deezer catalog client.
//
// Deezer's search and track endpoints are public and need no authentication.
// Durations arrive in seconds and are normalized to milliseconds.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
)

const deezerBaseURL = "https://api.deezer.com"

type deezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deezerAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CoverMedium string `json:"cover_medium"`
}

type deezerTrack struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Link     string       `json:"link"`
	Duration int          `json:"duration"`
	Artist   deezerArtist `json:"artist"`
	Album    deezerAlbum  `json:"album"`
}

type deezerSearchResponse struct {
	Data []deezerTrack `json:"data"`
}

type DeezerClient struct {
	fetcher fetcher
}

func NewDeezerClient(client *http.Client, logger *log.Logger) *DeezerClient {
	return &DeezerClient{fetcher: newFetcher(TagDeezer, client, logger)}
}

func (c *DeezerClient) Tag() Tag {
	return TagDeezer
}

func (c *DeezerClient) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, deezerBaseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	return req.WithContext(ctx), nil
}

func (c *DeezerClient) Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	query := search.Build(parsed, search.DialectDeezer)
	endpoint := fmt.Sprintf("/search?q=%s&limit=%d", url.QueryEscape(query), limit)

	var resp deezerSearchResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Data))
	for _, track := range resp.Data {
		if r := mapDeezerTrack(track); r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (c *DeezerClient) Track(ctx context.Context, id string) (*SearchResult, error) {
	endpoint := "/track/" + url.PathEscape(id)

	var track deezerTrack
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &track)
	if err != nil {
		return nil, err
	}

	result := mapDeezerTrack(track)
	if result == nil {
		return nil, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	return result, nil
}

func (c *DeezerClient) Recommendations(ctx context.Context, seedID string, limit int) ([]SearchResult, error) {
	return nil, fmt.Errorf("%w: deezer", shared.ErrNoRecommendations)
}

func mapDeezerTrack(track deezerTrack) *SearchResult {
	if track.ID == 0 || track.Title == "" {
		return nil
	}

	id := strconv.FormatInt(track.ID, 10)
	result := SearchResult{
		ID:         id,
		Title:      track.Title,
		Artist:     track.Artist.Name,
		Album:      track.Album.Title,
		ImageURL:   track.Album.CoverMedium,
		URL:        track.Link,
		DurationMS: track.Duration * 1000,
		Provider:   TagDeezer,
	}

	if result.URL == "" {
		result.URL = "https://www.deezer.com/track/" + id
	}

	return &result
}
