package tokens

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// cacheTTL bounds how stale a cached validity verdict may be.
	cacheTTL = 5 * time.Minute
	// expiryMargin treats tokens expiring within this window as needing a
	// closer look even when nominally unexpired.
	expiryMargin = 5 * time.Minute

	cacheCapacity = 256
)

var oauthEndpoints = map[string]oauth2.Endpoint{
	string(providers.TagSpotify): {
		AuthURL:  "https://accounts.spotify.com/authorize",
		TokenURL: "https://accounts.spotify.com/api/token",
	},
	string(providers.TagYouTube): {
		AuthURL:  "https://accounts.google.com/o/oauth2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	},
}

var oauthScopes = map[string][]string{
	string(providers.TagSpotify): {
		"user-read-private",
		"user-read-email",
	},
	string(providers.TagYouTube): {
		"https://www.googleapis.com/auth/youtube.readonly",
	},
}

// CredentialSource supplies OAuth application credentials per provider.
// Implemented by the settings package.
type CredentialSource interface {
	OAuthApp(provider string) (shared.OAuthAppConfig, error)
}

// Manager owns the OAuth token lifecycle for all providers: it reads tokens
// through the repository, refreshes them at the provider token endpoint when
// expired, and short-circuits repeat checks through a bounded validity cache.
type Manager struct {
	repo   *repositories.TokenRepository
	creds  CredentialSource
	cache  *ValidityCache
	logger *log.Logger

	// httpClient overrides the client used for refresh calls in tests.
	httpClient *http.Client
	now        func() time.Time
}

func NewManager(repo *repositories.TokenRepository, creds CredentialSource, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		repo:   repo,
		creds:  creds,
		cache:  NewValidityCache(cacheTTL, cacheCapacity),
		logger: logger,
		now:    time.Now,
	}
}

func cacheKey(userID, provider string) string {
	return userID + "/" + provider
}

// ValidAccessToken returns a usable access token for the (user, provider)
// pair, refreshing it first when expired.
//
// Failure modes: [shared.ErrNotConnected] when no token row exists,
// [shared.ErrMissingCredentials] when the provider's OAuth app is not
// configured, and [shared.ErrRefreshFailed] when the refresh call fails or
// no refresh token is available.
func (m *Manager) ValidAccessToken(ctx context.Context, userID, provider string) (string, error) {
	token, err := m.repo.Get(userID, provider)
	if err != nil {
		return "", err
	}

	key := cacheKey(userID, provider)
	if valid, ok := m.cache.Lookup(key); ok && valid {
		return token.AccessToken, nil
	}
	// A cached invalid verdict falls through to re-verify; a transient
	// refresh failure must not lock the pair out for the whole TTL.

	now := m.now()
	if !token.ExpiresAt.IsZero() && token.ExpiresAt.After(now.Add(expiryMargin)) {
		m.cache.Store(key, true)
		return token.AccessToken, nil
	}
	if !token.Expired(now) {
		m.cache.Store(key, true)
		return token.AccessToken, nil
	}

	refreshed, err := m.refresh(ctx, token)
	if err != nil {
		m.cache.Store(key, false)
		return "", err
	}

	m.cache.Store(key, true)
	return refreshed.AccessToken, nil
}

// refresh exchanges the refresh token at the provider's token endpoint and
// persists the rotated credentials. Two concurrent refreshes of the same row
// race last-write-wins; both outcomes are usable tokens.
func (m *Manager) refresh(ctx context.Context, token *models.Token) (*models.Token, error) {
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token for %s", shared.ErrRefreshFailed, token.Provider)
	}

	conf, err := m.oauthConfig(token.Provider)
	if err != nil {
		return nil, err
	}

	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken})
	fresh, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRefreshFailed, token.Provider, err)
	}

	token.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		token.RefreshToken = fresh.RefreshToken
	}
	token.ExpiresAt = fresh.Expiry

	if err := m.repo.Upsert(token); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	m.logger.Debug("refreshed provider token", "provider", token.Provider, "user", token.UserID)
	return token, nil
}

// IsConnected reports whether the user holds a working token for the
// provider. Refresh failures degrade to false instead of propagating.
func (m *Manager) IsConnected(ctx context.Context, userID, provider string) bool {
	_, err := m.ValidAccessToken(ctx, userID, provider)
	if err != nil {
		m.logger.Debug("provider not connected", "provider", provider, "user", userID, "cause", err)
		return false
	}
	return true
}

// Disconnect deletes the persisted token and drops its cache entry.
func (m *Manager) Disconnect(userID, provider string) error {
	if err := m.repo.Delete(userID, provider); err != nil {
		return err
	}
	m.cache.Invalidate(cacheKey(userID, provider))
	return nil
}

// StoreToken persists credentials obtained from an OAuth callback and marks
// the pair valid.
func (m *Manager) StoreToken(userID, provider string, token *oauth2.Token, scopes []string) error {
	record := &models.Token{
		UserID:       userID,
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		Scopes:       scopes,
	}
	if err := m.repo.Upsert(record); err != nil {
		return err
	}
	m.cache.Store(cacheKey(userID, provider), true)
	return nil
}

// Source returns a [providers.TokenSource] bound to one (user, provider)
// pair for injection into provider clients.
func (m *Manager) Source(userID, provider string) providers.TokenSource {
	return func(ctx context.Context) (string, error) {
		return m.ValidAccessToken(ctx, userID, provider)
	}
}

// AuthURL builds the provider's authorization URL for the connect flow.
func (m *Manager) AuthURL(provider, state string) (string, error) {
	conf, err := m.oauthConfig(provider)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades an authorization code for a token set.
func (m *Manager) Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	conf, err := m.oauthConfig(provider)
	if err != nil {
		return nil, err
	}

	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// Scopes returns the scope set requested for a provider.
func (m *Manager) Scopes(provider string) []string {
	return oauthScopes[provider]
}

func (m *Manager) oauthConfig(provider string) (*oauth2.Config, error) {
	endpoint, ok := oauthEndpoints[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no oauth endpoint", shared.ErrUnknownProvider, provider)
	}

	app, err := m.creds.OAuthApp(provider)
	if err != nil {
		return nil, err
	}
	if app.ClientID == "" || app.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingCredentials, provider)
	}

	return &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  app.RedirectURI,
		Scopes:       oauthScopes[provider],
		Endpoint:     endpoint,
	}, nil
}
