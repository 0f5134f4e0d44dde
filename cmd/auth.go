package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/server"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authFlowTimeout bounds how long the connect flow waits for the browser
// callback before giving up.
const authFlowTimeout = 3 * time.Minute

const defaultRedirectURI = "http://127.0.0.1:8913/callback"

// Connect runs the full OAuth2 authorization-code flow for a provider:
// opens the browser, serves the local callback, and stores the token set.
func (r *Runner) Connect(ctx context.Context, cmd *cli.Command) error {
	tag, err := providers.ParseTag(cmd.StringArg("provider"))
	if err != nil {
		return err
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.GetByEmail(cmd.String("email"))
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	state := shared.GenerateID()
	authURL, err := app.manager.AuthURL(string(tag), state)
	if err != nil {
		return err
	}

	redirect, err := r.redirectURI(app, string(tag))
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(func(ctx context.Context, code string) (*oauth2.Token, error) {
		return app.manager.Exchange(ctx, string(tag), code)
	}, state)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	srv := &http.Server{Addr: redirect.Host, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	r.writePlain("Opening browser for %s authorization...\n", tag)
	r.writePlain("If the browser does not open, visit:\n%s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("authorization failed: %w", result.Error())
		}
		scopes := app.manager.Scopes(string(tag))
		if err := app.manager.StoreToken(user.ID, string(tag), result.Token, scopes); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		r.logger.Info("provider connected", "provider", tag, "user", user.Email)
		return r.writePlain("✓ %s connected for %s\n", tag, user.Email)
	case <-time.After(authFlowTimeout):
		return fmt.Errorf("timed out waiting for authorization callback")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect removes the stored connection for a provider.
func (r *Runner) Disconnect(ctx context.Context, cmd *cli.Command) error {
	tag, err := providers.ParseTag(cmd.StringArg("provider"))
	if err != nil {
		return err
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.GetByEmail(cmd.String("email"))
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := app.manager.Disconnect(user.ID, string(tag)); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return r.writePlain("✓ %s disconnected for %s\n", tag, user.Email)
}

// Status prints the connection state for every provider.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.GetByEmail(cmd.String("email"))
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	for _, tag := range providers.AllTags {
		if app.manager.IsConnected(ctx, user.ID, string(tag)) {
			r.writePlain("%-12s ✓ connected\n", tag)
		} else {
			r.writePlain("%-12s ✗ not connected\n", tag)
		}
	}
	return nil
}

// redirectURI resolves the configured OAuth redirect for a provider,
// defaulting to a loopback address.
func (r *Runner) redirectURI(app *app, provider string) (*url.URL, error) {
	raw := defaultRedirectURI
	if oauthApp, err := app.settings.OAuthApp(provider); err == nil && oauthApp.RedirectURI != "" {
		raw = oauthApp.RedirectURI
	}

	redirect, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", raw, err)
	}
	return redirect, nil
}
