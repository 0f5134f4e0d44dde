// Package settings supplies runtime configuration to the search and token
// subsystems: which providers are enabled, in what priority order, and the
// OAuth app credentials per provider.
//
// Values are resolved in order: persisted settings store, then the TOML
// config, then process environment variables.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
)

const (
	KeyEnabledProviders = "search.enabled_providers"
	KeyProviderOrder    = "search.provider_order"
)

// Environment variable fallbacks for credentials left out of the config file.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvGoogleClientID      = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvYouTubeAPIKey       = "YOUTUBE_API_KEY"
)

// Service reads search settings and credentials. It treats every call as a
// point-in-time snapshot; nothing is cached here.
type Service struct {
	repo   *repositories.SettingsRepository
	config *shared.Config
	logger *log.Logger
}

func NewService(repo *repositories.SettingsRepository, config *shared.Config, logger *log.Logger) *Service {
	if config == nil {
		config = shared.DefaultConfig()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Service{repo: repo, config: config, logger: logger}
}

// EnabledProviders returns the set of providers searches may use.
func (s *Service) EnabledProviders() []providers.Tag {
	if tags := s.storedTags(KeyEnabledProviders); tags != nil {
		return tags
	}
	if tags := parseTags(s.config.Search.EnabledProviders); tags != nil {
		return tags
	}
	return providers.AllTags
}

// ProviderOrder returns the provider priority order used by aggregation.
func (s *Service) ProviderOrder() []providers.Tag {
	if tags := s.storedTags(KeyProviderOrder); tags != nil {
		return tags
	}
	if tags := parseTags(s.config.Search.ProviderOrder); tags != nil {
		return tags
	}
	return providers.AllTags
}

// SetEnabledProviders persists the enabled-provider set.
func (s *Service) SetEnabledProviders(tags []providers.Tag) error {
	return s.storeTags(KeyEnabledProviders, tags)
}

// SetProviderOrder persists the provider priority order.
func (s *Service) SetProviderOrder(tags []providers.Tag) error {
	return s.storeTags(KeyProviderOrder, tags)
}

// OAuthApp returns the OAuth application credentials for a provider,
// falling back to environment variables for empty fields. Implements the
// credential source consumed by the token manager.
func (s *Service) OAuthApp(provider string) (shared.OAuthAppConfig, error) {
	switch provider {
	case string(providers.TagSpotify):
		app := s.config.Credentials.Spotify
		app.ClientID = orEnv(app.ClientID, EnvSpotifyClientID)
		app.ClientSecret = orEnv(app.ClientSecret, EnvSpotifyClientSecret)
		return app, nil
	case string(providers.TagYouTube):
		app := s.config.Credentials.Google
		app.ClientID = orEnv(app.ClientID, EnvGoogleClientID)
		app.ClientSecret = orEnv(app.ClientSecret, EnvGoogleClientSecret)
		return app, nil
	default:
		return shared.OAuthAppConfig{}, fmt.Errorf("%w: %s has no oauth app", shared.ErrUnknownProvider, provider)
	}
}

// YouTubeAPIKey returns the API key for keyed YouTube access, or empty when
// only per-user OAuth is available.
func (s *Service) YouTubeAPIKey() string {
	return orEnv(s.config.Credentials.YouTube.APIKey, EnvYouTubeAPIKey)
}

// UserAgent returns the descriptive User-Agent sent to catalogs requiring
// one.
func (s *Service) UserAgent() string {
	if s.config.Search.UserAgent != "" {
		return s.config.Search.UserAgent
	}
	return "wunschbox/1.0"
}

func (s *Service) storedTags(key string) []providers.Tag {
	if s.repo == nil {
		return nil
	}

	value, err := s.repo.Get(key)
	if err != nil {
		return nil
	}
	return parseTags(strings.Split(value, ","))
}

func (s *Service) storeTags(key string, tags []providers.Tag) error {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, err := providers.ParseTag(string(tag)); err != nil {
			return err
		}
		names = append(names, string(tag))
	}
	return s.repo.Set(key, strings.Join(names, ","))
}

// parseTags keeps the known tags from a name list, dropping blanks and
// unknowns. Returns nil when nothing usable remains.
func parseTags(names []string) []providers.Tag {
	var tags []providers.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := providers.ParseTag(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func orEnv(value, env string) string {
	if value != "" {
		return value
	}
	return os.Getenv(env)
}
