// YouTube Data API v3 client.
//
// Authenticates with either an API key or a per-user bearer token. Searches
// are restricted to the music category (videoCategoryId 10) and followed by
// a videos lookup to resolve ISO 8601 durations into milliseconds.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
)

const (
	youtubeBaseURL         = "https://www.googleapis.com/youtube/v3"
	youtubeMusicCategoryID = "10"
)

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytThumbnails struct {
	Default ytThumbnail `json:"default"`
	Medium  ytThumbnail `json:"medium"`
	High    ytThumbnail `json:"high"`
}

type ytSnippet struct {
	Title        string       `json:"title"`
	ChannelTitle string       `json:"channelTitle"`
	Thumbnails   ytThumbnails `json:"thumbnails"`
}

type ytSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet ytSnippet `json:"snippet"`
}

type ytSearchResponse struct {
	Items []ytSearchItem `json:"items"`
}

type ytVideoItem struct {
	ID             string    `json:"id"`
	Snippet        ytSnippet `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type ytVideosResponse struct {
	Items []ytVideoItem `json:"items"`
}

// YouTubeClient queries the YouTube Data API. When apiKey is set it is sent
// as a query parameter; otherwise the token source supplies a bearer token.
type YouTubeClient struct {
	fetcher fetcher
	apiKey  string
	tokens  TokenSource
}

func NewYouTubeClient(apiKey string, tokens TokenSource, client *http.Client, logger *log.Logger) *YouTubeClient {
	return &YouTubeClient{
		fetcher: newFetcher(TagYouTube, client, logger),
		apiKey:  apiKey,
		tokens:  tokens,
	}
}

func (c *YouTubeClient) Tag() Tag {
	return TagYouTube
}

func (c *YouTubeClient) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	target := youtubeBaseURL + endpoint
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + "key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	if c.apiKey == "" {
		if c.tokens == nil {
			return nil, fmt.Errorf("%w: youtube", shared.ErrMissingCredentials)
		}
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *YouTubeClient) Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	query := search.Build(parsed, search.DialectPlain)
	endpoint := fmt.Sprintf("/search?part=snippet&type=video&videoCategoryId=%s&maxResults=%d&q=%s",
		youtubeMusicCategoryID, limit, url.QueryEscape(query))

	var resp ytSearchResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	durations := c.videoDurations(ctx, ids)

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" || item.Snippet.Title == "" {
			continue
		}
		result := mapYouTubeSnippet(item.ID.VideoID, item.Snippet)
		result.DurationMS = durations[item.ID.VideoID]
		results = append(results, result)
	}
	return results, nil
}

func (c *YouTubeClient) Track(ctx context.Context, id string) (*SearchResult, error) {
	endpoint := "/videos?part=snippet,contentDetails&id=" + url.QueryEscape(id)

	var resp ytVideosResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet.Title == "" {
		return nil, fmt.Errorf("%w: video %s", shared.ErrNotFound, id)
	}

	item := resp.Items[0]
	result := mapYouTubeSnippet(item.ID, item.Snippet)
	result.DurationMS = parseISO8601Duration(item.ContentDetails.Duration)
	return &result, nil
}

func (c *YouTubeClient) Recommendations(ctx context.Context, seedID string, limit int) ([]SearchResult, error) {
	return nil, fmt.Errorf("%w: youtube", shared.ErrNoRecommendations)
}

// videoDurations resolves durations for up to 50 video ids. Failures are
// tolerated; missing ids simply have no duration.
func (c *YouTubeClient) videoDurations(ctx context.Context, ids []string) map[string]int {
	durations := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return durations
	}

	endpoint := "/videos?part=contentDetails&id=" + url.QueryEscape(strings.Join(ids, ","))

	var resp ytVideosResponse
	err := c.fetcher.getJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	}, &resp)
	if err != nil {
		c.fetcher.logger.Warn("duration lookup failed", "error", err)
		return durations
	}

	for _, item := range resp.Items {
		durations[item.ID] = parseISO8601Duration(item.ContentDetails.Duration)
	}
	return durations
}

func mapYouTubeSnippet(id string, snippet ytSnippet) SearchResult {
	image := snippet.Thumbnails.High.URL
	if image == "" {
		image = snippet.Thumbnails.Medium.URL
	}
	if image == "" {
		image = snippet.Thumbnails.Default.URL
	}

	return SearchResult{
		ID:       id,
		Title:    snippet.Title,
		Artist:   snippet.ChannelTitle,
		ImageURL: image,
		URL:      "https://www.youtube.com/watch?v=" + id,
		Provider: TagYouTube,
	}
}

var iso8601Duration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration converts a YouTube duration such as "PT4M33S" to
// milliseconds. Unparseable input yields zero.
func parseISO8601Duration(s string) int {
	m := iso8601Duration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return ((hours*60+minutes)*60 + seconds) * 1000
}
