// MusicBrainz catalog client.
//
// MusicBrainz is unauthenticated but requires a descriptive User-Agent and
// caps anonymous clients at one request per second. The limiter is shared
// across all calls on one client, so construct it once per process.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
	"golang.org/x/time/rate"
)

const (
	musicbrainzBaseURL  = "https://musicbrainz.org/ws/2"
	coverArtArchiveBase = "https://coverartarchive.org/release"
)

type mbArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type mbRelease struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type mbRecording struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Length       int              `json:"length"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	Releases     []mbRelease      `json:"releases"`
}

type mbSearchResponse struct {
	Recordings []mbRecording `json:"recordings"`
}

type MusicBrainzClient struct {
	fetcher   fetcher
	limiter   *rate.Limiter
	userAgent string
}

func NewMusicBrainzClient(userAgent string, client *http.Client, logger *log.Logger) *MusicBrainzClient {
	if userAgent == "" {
		userAgent = "wunschbox/1.0"
	}
	return &MusicBrainzClient{
		fetcher:   newFetcher(TagMusicBrainz, client, logger),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		userAgent: userAgent,
	}
}

func (c *MusicBrainzClient) Tag() Tag {
	return TagMusicBrainz
}

// newRequest waits on the rate limiter before constructing the request, so
// retries also honor the one-per-second spacing.
func (c *MusicBrainzClient) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, musicbrainzBaseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *MusicBrainzClient) Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	query := search.Build(parsed, search.DialectLucene)
	endpoint := fmt.Sprintf("/recording?query=%s&fmt=json&limit=%d", url.QueryEscape(query), limit)

	var resp mbSearchResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Recordings))
	for _, rec := range resp.Recordings {
		if r := mapRecording(rec); r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (c *MusicBrainzClient) Track(ctx context.Context, id string) (*SearchResult, error) {
	endpoint := fmt.Sprintf("/recording/%s?inc=artist-credits+releases&fmt=json", url.PathEscape(id))

	var rec mbRecording
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &rec)
	if err != nil {
		return nil, err
	}

	result := mapRecording(rec)
	if result == nil {
		return nil, fmt.Errorf("%w: recording %s", shared.ErrNotFound, id)
	}
	return result, nil
}

func (c *MusicBrainzClient) Recommendations(ctx context.Context, seedID string, limit int) ([]SearchResult, error) {
	return nil, fmt.Errorf("%w: musicbrainz", shared.ErrNoRecommendations)
}

func mapRecording(rec mbRecording) *SearchResult {
	if rec.ID == "" || rec.Title == "" {
		return nil
	}

	result := SearchResult{
		ID:         rec.ID,
		Title:      rec.Title,
		URL:        "https://musicbrainz.org/recording/" + rec.ID,
		DurationMS: rec.Length,
		Provider:   TagMusicBrainz,
	}

	if len(rec.ArtistCredit) > 0 {
		names := make([]string, 0, len(rec.ArtistCredit))
		for _, credit := range rec.ArtistCredit {
			name := credit.Name
			if name == "" {
				name = credit.Artist.Name
			}
			if name != "" {
				names = append(names, name)
			}
		}
		result.Artist = joinNames(names)
	}

	if len(rec.Releases) > 0 {
		result.Album = rec.Releases[0].Title
		// Cover Art Archive serves artwork by release MBID; the URL is
		// deterministic so no lookup call is needed.
		result.ImageURL = fmt.Sprintf("%s/%s/front-250", coverArtArchiveBase, rec.Releases[0].ID)
	}

	return &result
}
