package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/settings"
	"github.com/teamhub/wunschbox/internal/shared"
	th "github.com/teamhub/wunschbox/internal/testing"
)

// newTestAggregator builds an aggregator whose provider clients are the
// given fakes, keyed by tag.
func newTestAggregator(t *testing.T, clients map[providers.Tag]*th.FakeProvider, order, enabled []providers.Tag) *Aggregator {
	t.Helper()

	db := th.OpenTestDB(t)
	repo := repositories.NewSettingsRepository(db)
	svc := settings.NewService(repo, shared.DefaultConfig(), nil)
	if err := svc.SetProviderOrder(order); err != nil {
		t.Fatalf("SetProviderOrder failed: %v", err)
	}
	if err := svc.SetEnabledProviders(enabled); err != nil {
		t.Fatalf("SetEnabledProviders failed: %v", err)
	}

	a := New(svc, nil, nil, nil, nil)
	a.clientFor = func(ctx context.Context, tag providers.Tag, userID string) (providers.Client, error) {
		client, ok := clients[tag]
		if !ok {
			return nil, shared.ErrNotConnected
		}
		return client, nil
	}
	return a
}

func result(tag providers.Tag, id, title, artist string) providers.SearchResult {
	return providers.SearchResult{ID: id, Title: title, Artist: artist, Provider: tag}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Deduplicates First Provider Wins", func(t *testing.T) {
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagMusicBrainz: {
				ProviderTag: providers.TagMusicBrainz,
				Results:     []providers.SearchResult{result(providers.TagMusicBrainz, "mb1", "One", "Metallica")},
			},
			providers.TagDeezer: {
				ProviderTag: providers.TagDeezer,
				Results: []providers.SearchResult{
					result(providers.TagDeezer, "dz1", "  one ", "METALLICA"),
					result(providers.TagDeezer, "dz2", "One (Live)", "Metallica"),
				},
			},
		}
		order := []providers.Tag{providers.TagMusicBrainz, providers.TagDeezer}
		a := newTestAggregator(t, clients, order, order)

		resp, err := a.Search(ctx, Request{Query: "one metallica", MinResults: 10})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) != 2 {
			t.Fatalf("expected 2 deduplicated results, got %d", len(resp.Results))
		}
		for _, r := range resp.Results {
			if r.ID == "dz1" {
				t.Error("expected the earlier provider's instance to win the collision")
			}
		}
	})

	t.Run("Early Exit Skips Later Providers", func(t *testing.T) {
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagMusicBrainz: {
				ProviderTag: providers.TagMusicBrainz,
				Results:     []providers.SearchResult{result(providers.TagMusicBrainz, "mb1", "One", "Metallica")},
			},
			providers.TagDeezer: {ProviderTag: providers.TagDeezer},
		}
		order := []providers.Tag{providers.TagMusicBrainz, providers.TagDeezer}
		a := newTestAggregator(t, clients, order, order)

		if _, err := a.Search(ctx, Request{Query: "one", MinResults: 1}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if clients[providers.TagDeezer].SearchCalls != 0 {
			t.Errorf("expected deezer never called, got %d calls", clients[providers.TagDeezer].SearchCalls)
		}
	})

	t.Run("Provider Failure Tolerated", func(t *testing.T) {
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagMusicBrainz: {
				ProviderTag: providers.TagMusicBrainz,
				Err:         errors.New("boom"),
			},
			providers.TagDeezer: {
				ProviderTag: providers.TagDeezer,
				Results:     []providers.SearchResult{result(providers.TagDeezer, "dz1", "One", "Metallica")},
			},
		}
		order := []providers.Tag{providers.TagMusicBrainz, providers.TagDeezer}
		a := newTestAggregator(t, clients, order, order)

		resp, err := a.Search(ctx, Request{Query: "one"})
		if err != nil {
			t.Fatalf("expected partial failure tolerated, got %v", err)
		}
		if len(resp.Results) != 1 {
			t.Errorf("expected the healthy provider's results, got %d", len(resp.Results))
		}
	})

	t.Run("Empty Enabled Intersection", func(t *testing.T) {
		a := newTestAggregator(t, nil,
			[]providers.Tag{providers.TagSpotify},
			[]providers.Tag{providers.TagDeezer})

		resp, err := a.Search(ctx, Request{Query: "anything"})
		if err != nil {
			t.Fatalf("expected empty response, got error %v", err)
		}
		if len(resp.Results) != 0 {
			t.Errorf("expected no results, got %d", len(resp.Results))
		}
	})

	t.Run("Results Capped At Twice Limit", func(t *testing.T) {
		tags := []providers.Tag{providers.TagMusicBrainz, providers.TagDeezer, providers.TagYouTube}
		clients := make(map[providers.Tag]*th.FakeProvider, len(tags))
		for _, tag := range tags {
			var results []providers.SearchResult
			for i := 0; i < 4; i++ {
				id := fmt.Sprintf("%s-%d", tag, i)
				results = append(results, result(tag, id, "Track "+id, "Artist"))
			}
			clients[tag] = &th.FakeProvider{ProviderTag: tag, Results: results}
		}
		a := newTestAggregator(t, clients, tags, tags)

		resp, err := a.Search(ctx, Request{Query: "track", Limit: 3, MinResults: 50})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) != 6 {
			t.Errorf("expected cap of limit*2 = 6, got %d", len(resp.Results))
		}
	})

	t.Run("Recommendations Seeded From First Spotify Result", func(t *testing.T) {
		recs := []providers.SearchResult{
			{ID: "r1", Title: "Sad But True", Artist: "Metallica", Provider: providers.TagSpotify, Recommended: true},
			{ID: "r2", Title: "sad but true", Artist: "METALLICA", Provider: providers.TagSpotify, Recommended: true},
			{ID: "r3", Title: "Enter Sandman", Artist: "Metallica", Provider: providers.TagSpotify, Recommended: true},
		}
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagSpotify: {
				ProviderTag:     providers.TagSpotify,
				Results:         []providers.SearchResult{result(providers.TagSpotify, "sp1", "One", "Metallica")},
				RecResults:      recs,
			},
		}
		order := []providers.Tag{providers.TagSpotify}
		a := newTestAggregator(t, clients, order, order)

		resp, err := a.Search(ctx, Request{Query: "one metallica", IncludeRecommendations: true})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Recommendations) != 2 {
			t.Fatalf("expected recommendations deduplicated to 2, got %d", len(resp.Recommendations))
		}
		for _, rec := range resp.Recommendations {
			if !rec.Recommended {
				t.Errorf("expected recommendation flag set: %+v", rec)
			}
		}
	})

	t.Run("No Seed Means No Recommendations", func(t *testing.T) {
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagDeezer: {
				ProviderTag: providers.TagDeezer,
				Results:     []providers.SearchResult{result(providers.TagDeezer, "dz1", "One", "Metallica")},
			},
		}
		order := []providers.Tag{providers.TagDeezer}
		a := newTestAggregator(t, clients, order, order)

		resp, err := a.Search(ctx, Request{Query: "one", IncludeRecommendations: true})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Recommendations) != 0 {
			t.Errorf("expected no recommendations without an oauth seed, got %d", len(resp.Recommendations))
		}
	})

	t.Run("Scenario Sido Strassenjunge", func(t *testing.T) {
		mbResults := []providers.SearchResult{
			result(providers.TagMusicBrainz, "mb1", "Straßenjunge", "Sido"),
			result(providers.TagMusicBrainz, "mb2", "Straßenjunge (Instrumental)", "Sido"),
			result(providers.TagMusicBrainz, "mb3", "Straßenjunge (Live)", "Sido"),
			result(providers.TagMusicBrainz, "mb4", "Mein Block", "Sido"),
			result(providers.TagMusicBrainz, "mb5", "Der Straßenjunge", "Bushido"),
			result(providers.TagMusicBrainz, "mb6", "Carmen", "Bizet"),
		}
		clients := map[providers.Tag]*th.FakeProvider{
			providers.TagMusicBrainz: {ProviderTag: providers.TagMusicBrainz, Results: mbResults},
			providers.TagDeezer:      {ProviderTag: providers.TagDeezer},
		}
		a := newTestAggregator(t, clients,
			[]providers.Tag{providers.TagMusicBrainz, providers.TagDeezer},
			[]providers.Tag{providers.TagMusicBrainz, providers.TagDeezer})

		resp, err := a.Search(ctx, Request{Query: "sido straßenjunge", MinResults: 5})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		if clients[providers.TagDeezer].SearchCalls != 0 {
			t.Error("expected deezer skipped after musicbrainz satisfied minResults")
		}
		if len(resp.Results) != 6 {
			t.Fatalf("expected 6 results, got %d", len(resp.Results))
		}

		parsed := search.Parse("sido straßenjunge")
		for i := 1; i < len(resp.Results); i++ {
			if Score(resp.Results[i-1], parsed) < Score(resp.Results[i], parsed) {
				t.Errorf("results not sorted by descending score at index %d", i)
			}
		}
	})
}
