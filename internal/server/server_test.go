package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teamhub/wunschbox/internal/aggregator"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/server"
	"github.com/teamhub/wunschbox/internal/settings"
	"github.com/teamhub/wunschbox/internal/shared"
	th "github.com/teamhub/wunschbox/internal/testing"
	"golang.org/x/oauth2"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		router := server.NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for wrong method, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var calls []string
		mw := func(name string) server.Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := server.NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if strings.Join(calls, ",") != "outer,inner" {
			t.Errorf("unexpected middleware order: %v", calls)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	exchange := func(ctx context.Context, code string) (*oauth2.Token, error) {
		if code != "good-code" {
			return nil, errors.New("bad code")
		}
		return &oauth2.Token{AccessToken: "granted"}, nil
	}

	t.Run("Successful Callback", func(t *testing.T) {
		handler := server.NewOAuthHandler(exchange, "state-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "granted" {
			t.Errorf("unexpected token: %+v", result.Token)
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		handler := server.NewOAuthHandler(exchange, "state-1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=evil&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		if result := <-handler.Result(); result.Error() == nil {
			t.Error("expected error result for bad state")
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		handler := server.NewOAuthHandler(exchange, "state-1")
		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}

func newSearchAggregator(t *testing.T) *aggregator.Aggregator {
	t.Helper()

	db := th.OpenTestDB(t)
	repo := repositories.NewSettingsRepository(db)
	svc := settings.NewService(repo, shared.DefaultConfig(), nil)
	// Disjoint order and enabled set: searches legitimately return empty
	// results without touching any provider.
	if err := svc.SetEnabledProviders([]providers.Tag{providers.TagSpotify}); err != nil {
		t.Fatalf("SetEnabledProviders failed: %v", err)
	}
	if err := svc.SetProviderOrder([]providers.Tag{providers.TagDeezer}); err != nil {
		t.Fatalf("SetProviderOrder failed: %v", err)
	}
	return aggregator.New(svc, nil, nil, nil, nil)
}

func TestSearchHandler(t *testing.T) {
	logger := shared.NewLogger(nil)
	handler := server.NewSearchHandler(newSearchAggregator(t), logger)

	t.Run("Missing Query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Empty Provider Set Yields Empty Results", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=one+metallica", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp aggregator.Response
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Results) != 0 {
			t.Errorf("expected empty results, got %d", len(resp.Results))
		}
	})
}

func TestWishHandler(t *testing.T) {
	db := th.OpenTestDB(t)
	wishes := repositories.NewWishRepository(db)
	handler := server.NewWishHandler(wishes, shared.NewLogger(nil))

	post := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/wishes", strings.NewReader(body))
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Add Wish", func(t *testing.T) {
		rec := post(t, `{"provider":"spotify","track_id":"t1","title":"One","artist":"Metallica"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created struct {
			ID       string `json:"id"`
			Position int    `json:"position"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if created.ID == "" || created.Position != 1 {
			t.Errorf("unexpected created wish: %+v", created)
		}
	})

	t.Run("Duplicate Conflict", func(t *testing.T) {
		rec := post(t, `{"provider":"spotify","track_id":"t1","title":"One"}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("Unknown Provider", func(t *testing.T) {
		rec := post(t, `{"provider":"soundcloud","track_id":"t9","title":"X"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("List Queue", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wishes", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Wishes []struct {
				Title    string `json:"title"`
				Position int    `json:"position"`
			} `json:"wishes"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Wishes) != 1 || resp.Wishes[0].Title != "One" {
			t.Errorf("unexpected queue: %+v", resp.Wishes)
		}
	})
}
