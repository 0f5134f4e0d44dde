package tokens

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
	th "github.com/teamhub/wunschbox/internal/testing"
	"golang.org/x/oauth2"
)

type fakeCreds struct {
	apps map[string]shared.OAuthAppConfig
}

func (f fakeCreds) OAuthApp(provider string) (shared.OAuthAppConfig, error) {
	app, ok := f.apps[provider]
	if !ok {
		return shared.OAuthAppConfig{}, nil
	}
	return app, nil
}

func newTestManager(t *testing.T) (*Manager, *repositories.TokenRepository) {
	t.Helper()

	db := th.OpenTestDB(t)
	repo := repositories.NewTokenRepository(db, th.MustSecretBox(t))
	creds := fakeCreds{apps: map[string]shared.OAuthAppConfig{
		"spotify": {ClientID: "app-id", ClientSecret: "app-secret", RedirectURI: "http://localhost:8080/callback"},
	}}
	return NewManager(repo, creds, nil), repo
}

const refreshResponse = `{"access_token":"new-access","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`

func TestValidAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Connected", func(t *testing.T) {
		manager, _ := newTestManager(t)
		_, err := manager.ValidAccessToken(ctx, "u1", "spotify")
		if !errors.Is(err, shared.ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})

	t.Run("Fresh Token Needs No Network", func(t *testing.T) {
		manager, repo := newTestManager(t)
		rt := th.NewScriptedRoundTripper(th.ScriptStep{Err: errors.New("no network call expected")})
		manager.httpClient = &http.Client{Transport: rt}

		err := repo.Upsert(&models.Token{
			UserID:      "u1",
			Provider:    "spotify",
			AccessToken: "current",
			ExpiresAt:   time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		for i := 0; i < 2; i++ {
			token, err := manager.ValidAccessToken(ctx, "u1", "spotify")
			if err != nil {
				t.Fatalf("call %d failed: %v", i, err)
			}
			if token != "current" {
				t.Errorf("expected current access token, got %q", token)
			}
		}

		if rt.Count() != 0 {
			t.Errorf("expected zero refresh calls, got %d", rt.Count())
		}
	})

	t.Run("Token Without Expiry Stays Valid", func(t *testing.T) {
		manager, repo := newTestManager(t)
		err := repo.Upsert(&models.Token{UserID: "u1", Provider: "spotify", AccessToken: "forever"})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		token, err := manager.ValidAccessToken(ctx, "u1", "spotify")
		if err != nil || token != "forever" {
			t.Errorf("expected token without expiry accepted, got %q, %v", token, err)
		}
	})

	t.Run("Expired Token Refreshed And Persisted", func(t *testing.T) {
		manager, repo := newTestManager(t)
		rt := th.NewScriptedRoundTripper(th.ScriptStep{Response: th.JSONResponse(200, refreshResponse)})
		manager.httpClient = &http.Client{Transport: rt}

		err := repo.Upsert(&models.Token{
			UserID:       "u1",
			Provider:     "spotify",
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		token, err := manager.ValidAccessToken(ctx, "u1", "spotify")
		if err != nil {
			t.Fatalf("ValidAccessToken failed: %v", err)
		}
		if token != "new-access" {
			t.Errorf("expected refreshed token, got %q", token)
		}
		if rt.Count() != 1 {
			t.Errorf("expected one refresh call, got %d", rt.Count())
		}

		persisted, err := repo.Get("u1", "spotify")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if persisted.AccessToken != "new-access" || persisted.RefreshToken != "new-refresh" {
			t.Errorf("expected rotated credentials persisted, got %+v", persisted)
		}
		if persisted.ExpiresAt.Before(time.Now()) {
			t.Errorf("expected future expiry, got %v", persisted.ExpiresAt)
		}
	})

	t.Run("Missing Refresh Token Is Fatal", func(t *testing.T) {
		manager, repo := newTestManager(t)
		err := repo.Upsert(&models.Token{
			UserID:      "u1",
			Provider:    "spotify",
			AccessToken: "stale",
			ExpiresAt:   time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		if _, err := manager.ValidAccessToken(ctx, "u1", "spotify"); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})

	t.Run("Refresh Failure Cached As Invalid But Retried", func(t *testing.T) {
		manager, repo := newTestManager(t)
		rt := th.NewScriptedRoundTripper(
			th.ScriptStep{Response: th.JSONResponse(500, `{}`)},
			th.ScriptStep{Response: th.JSONResponse(200, refreshResponse)},
		)
		manager.httpClient = &http.Client{Transport: rt}

		err := repo.Upsert(&models.Token{
			UserID:       "u1",
			Provider:     "spotify",
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		if _, err := manager.ValidAccessToken(ctx, "u1", "spotify"); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Fatalf("expected ErrRefreshFailed, got %v", err)
		}

		// The invalid verdict must not block the next attempt.
		token, err := manager.ValidAccessToken(ctx, "u1", "spotify")
		if err != nil {
			t.Fatalf("retry after failure blocked: %v", err)
		}
		if token != "new-access" {
			t.Errorf("expected refreshed token on retry, got %q", token)
		}
	})

	t.Run("Missing App Credentials", func(t *testing.T) {
		manager, repo := newTestManager(t)
		err := repo.Upsert(&models.Token{
			UserID:       "u1",
			Provider:     "youtube",
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		if _, err := manager.ValidAccessToken(ctx, "u1", "youtube"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestIsConnected(t *testing.T) {
	ctx := context.Background()

	t.Run("Degrades To False", func(t *testing.T) {
		manager, repo := newTestManager(t)

		if manager.IsConnected(ctx, "u1", "spotify") {
			t.Error("expected false without a token row")
		}

		err := repo.Upsert(&models.Token{
			UserID:      "u1",
			Provider:    "spotify",
			AccessToken: "stale",
			ExpiresAt:   time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		if manager.IsConnected(ctx, "u1", "spotify") {
			t.Error("expected refresh failure to degrade to false")
		}
	})

	t.Run("True For Valid Token", func(t *testing.T) {
		manager, repo := newTestManager(t)
		err := repo.Upsert(&models.Token{
			UserID:      "u1",
			Provider:    "spotify",
			AccessToken: "ok",
			ExpiresAt:   time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		if !manager.IsConnected(ctx, "u1", "spotify") {
			t.Error("expected true for a fresh token")
		}
	})
}

func TestDisconnect(t *testing.T) {
	manager, repo := newTestManager(t)
	ctx := context.Background()

	err := repo.Upsert(&models.Token{
		UserID:      "u1",
		Provider:    "spotify",
		AccessToken: "ok",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if !manager.IsConnected(ctx, "u1", "spotify") {
		t.Fatal("expected connection before disconnect")
	}
	if err := manager.Disconnect("u1", "spotify"); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if manager.IsConnected(ctx, "u1", "spotify") {
		t.Error("expected disconnect to drop the cached verdict")
	}
}

func TestStoreToken(t *testing.T) {
	manager, repo := newTestManager(t)

	token := &oauth2.Token{
		AccessToken:  "cb-access",
		RefreshToken: "cb-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := manager.StoreToken("u1", "spotify", token, []string{"user-read-private"}); err != nil {
		t.Fatalf("StoreToken failed: %v", err)
	}

	persisted, err := repo.Get("u1", "spotify")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if persisted.AccessToken != "cb-access" || persisted.RefreshToken != "cb-refresh" {
		t.Errorf("unexpected persisted token: %+v", persisted)
	}
}

func TestAuthURL(t *testing.T) {
	manager, _ := newTestManager(t)

	t.Run("Spotify", func(t *testing.T) {
		u, err := manager.AuthURL("spotify", "state-1")
		if err != nil {
			t.Fatalf("AuthURL failed: %v", err)
		}
		if u == "" {
			t.Fatal("expected a url")
		}
	})

	t.Run("Unknown Provider", func(t *testing.T) {
		if _, err := manager.AuthURL("deezer", "s"); !errors.Is(err, shared.ErrUnknownProvider) {
			t.Errorf("expected ErrUnknownProvider, got %v", err)
		}
	})
}
