// Package aggregator fans a search query out across the enabled catalogs in
// priority order, deduplicates and ranks the merged results, and optionally
// attaches catalog recommendations.
package aggregator

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/settings"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/teamhub/wunschbox/internal/tokens"
)

const (
	defaultLimit      = 10
	defaultMinResults = 5
	recommendationCap = 5
)

// Request describes one aggregated search.
type Request struct {
	Query string
	// Limit caps each provider call; the merged response holds at most
	// Limit*2 results.
	Limit int
	// MinResults stops provider iteration early once this many distinct
	// results have accumulated.
	MinResults int
	// UserID selects whose provider connections to use. Empty falls back
	// to the system credential resolver for OAuth-only catalogs.
	UserID                 string
	IncludeRecommendations bool
}

// Response carries the ranked results and any recommendations.
type Response struct {
	Results         []providers.SearchResult `json:"results"`
	Recommendations []providers.SearchResult `json:"recommendations,omitempty"`
}

// Aggregator performs multi-catalog searches. Providers are visited
// strictly in the configured order; a failing provider is logged and
// skipped, never aborting the whole search.
type Aggregator struct {
	settings *settings.Service
	manager  *tokens.Manager
	resolver SystemCredentialResolver
	logger   *log.Logger

	// musicbrainz and deezer keep no per-user state, so one instance each
	// serves all calls. The MusicBrainz rate limiter lives on that shared
	// instance.
	musicbrainz *providers.MusicBrainzClient
	deezer      *providers.DeezerClient

	// clientFor is replaced in tests to inject fakes.
	clientFor func(ctx context.Context, tag providers.Tag, userID string) (providers.Client, error)
}

func New(svc *settings.Service, manager *tokens.Manager, resolver SystemCredentialResolver, client *http.Client, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &Aggregator{
		settings:    svc,
		manager:     manager,
		resolver:    resolver,
		logger:      logger,
		musicbrainz: providers.NewMusicBrainzClient(svc.UserAgent(), client, logger),
		deezer:      providers.NewDeezerClient(client, logger),
	}
	a.clientFor = func(ctx context.Context, tag providers.Tag, userID string) (providers.Client, error) {
		return a.buildClient(ctx, tag, userID, client)
	}
	return a
}

// buildClient resolves credentials and constructs the client for one tag.
// OAuth-only catalogs without a user identity borrow an admin connection via
// the resolver.
func (a *Aggregator) buildClient(ctx context.Context, tag providers.Tag, userID string, client *http.Client) (providers.Client, error) {
	switch tag {
	case providers.TagSpotify:
		uid, err := a.effectiveUserID(ctx, userID, tag)
		if err != nil {
			return nil, err
		}
		return providers.NewSpotifyClient(a.manager.Source(uid, string(tag)), client, a.logger), nil

	case providers.TagYouTube:
		if key := a.settings.YouTubeAPIKey(); key != "" {
			return providers.NewYouTubeClient(key, nil, client, a.logger), nil
		}
		uid, err := a.effectiveUserID(ctx, userID, tag)
		if err != nil {
			return nil, err
		}
		return providers.NewYouTubeClient("", a.manager.Source(uid, string(tag)), client, a.logger), nil

	case providers.TagMusicBrainz:
		return a.musicbrainz, nil

	case providers.TagDeezer:
		return a.deezer, nil
	}

	return nil, shared.ErrUnknownProvider
}

func (a *Aggregator) effectiveUserID(ctx context.Context, userID string, tag providers.Tag) (string, error) {
	if userID != "" {
		return userID, nil
	}
	if a.resolver == nil {
		return "", shared.ErrNotConnected
	}
	return a.resolver.ResolveUserID(ctx, string(tag))
}

// Search runs the aggregation: parse, iterate enabled providers in priority
// order with early exit, deduplicate, score, sort, cap.
func (a *Aggregator) Search(ctx context.Context, req Request) (*Response, error) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.MinResults <= 0 {
		req.MinResults = defaultMinResults
	}

	parsed := search.Parse(req.Query)
	order := enabledOrder(a.settings.ProviderOrder(), a.settings.EnabledProviders())
	if len(order) == 0 {
		return &Response{}, nil
	}

	var (
		merged    []scored
		seen      = make(map[string]struct{})
		firstSeed providers.SearchResult
		seedSet   bool
	)

	for _, tag := range order {
		if len(merged) >= req.MinResults {
			break
		}

		client, err := a.clientFor(ctx, tag, req.UserID)
		if err != nil {
			a.logger.Debug("skipping provider", "provider", tag, "cause", err)
			continue
		}

		results, err := client.Search(ctx, parsed, req.Limit)
		if err != nil {
			a.logger.Warn("provider search failed", "provider", tag, "error", err)
			continue
		}

		for _, result := range results {
			key := dedupeKey(result)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, scored{result: result, score: Score(result, parsed)})

			if !seedSet && result.Provider == providers.TagSpotify {
				firstSeed = result
				seedSet = true
			}
		}
	}

	sortScored(merged)

	capped := req.Limit * 2
	if len(merged) > capped {
		merged = merged[:capped]
	}

	resp := &Response{Results: make([]providers.SearchResult, len(merged))}
	for i, item := range merged {
		resp.Results[i] = item.result
	}

	if req.IncludeRecommendations && seedSet {
		resp.Recommendations = a.recommendations(ctx, req.UserID, firstSeed)
	}

	return resp, nil
}

// Track fetches a single track through the matching provider client.
func (a *Aggregator) Track(ctx context.Context, userID string, tag providers.Tag, trackID string) (*providers.SearchResult, error) {
	client, err := a.clientFor(ctx, tag, userID)
	if err != nil {
		return nil, err
	}
	return client.Track(ctx, trackID)
}

// Recommend returns recommendations seeded on a known track id.
func (a *Aggregator) Recommend(ctx context.Context, userID string, tag providers.Tag, seedID string, limit int) ([]providers.SearchResult, error) {
	if limit <= 0 || limit > recommendationCap {
		limit = recommendationCap
	}
	client, err := a.clientFor(ctx, tag, userID)
	if err != nil {
		return nil, err
	}
	return client.Recommendations(ctx, seedID, limit)
}

// recommendations is best-effort: any failure degrades to none.
func (a *Aggregator) recommendations(ctx context.Context, userID string, seed providers.SearchResult) []providers.SearchResult {
	client, err := a.clientFor(ctx, seed.Provider, userID)
	if err != nil {
		a.logger.Debug("skipping recommendations", "provider", seed.Provider, "cause", err)
		return nil
	}

	fetched, err := client.Recommendations(ctx, seed.ID, recommendationCap)
	if err != nil {
		a.logger.Debug("recommendation fetch failed", "provider", seed.Provider, "error", err)
		return nil
	}

	seen := make(map[string]struct{}, len(fetched))
	var recs []providers.SearchResult
	for _, rec := range fetched {
		key := dedupeKey(rec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		recs = append(recs, rec)
		if len(recs) == recommendationCap {
			break
		}
	}
	return recs
}

// enabledOrder filters the priority order down to the enabled set.
func enabledOrder(order, enabled []providers.Tag) []providers.Tag {
	enabledSet := make(map[providers.Tag]struct{}, len(enabled))
	for _, tag := range enabled {
		enabledSet[tag] = struct{}{}
	}

	var filtered []providers.Tag
	for _, tag := range order {
		if _, ok := enabledSet[tag]; ok {
			filtered = append(filtered, tag)
		}
	}
	return filtered
}

func dedupeKey(result providers.SearchResult) string {
	return normalize(result.Title) + "|" + normalize(result.Artist)
}
