package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/teamhub/wunschbox/internal/aggregator"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs an aggregated catalog search and prints ranked results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	userID, err := r.resolveUserID(app, cmd.String("email"))
	if err != nil {
		return err
	}

	resp, err := app.agg.Search(ctx, aggregator.Request{
		Query:                  query,
		Limit:                  int(cmd.Int("limit")),
		UserID:                 userID,
		IncludeRecommendations: cmd.Bool("recommendations"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, true)
	}

	if len(resp.Results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	for i, result := range resp.Results {
		r.writeResult(i+1, result)
	}

	if len(resp.Recommendations) > 0 {
		r.writePlain("\nRecommended:\n")
		for i, result := range resp.Recommendations {
			r.writeResult(i+1, result)
		}
	}
	return nil
}

func (r *Runner) writeResult(rank int, result providers.SearchResult) {
	line := fmt.Sprintf("%2d. %s", rank, result.Title)
	if result.Artist != "" {
		line += " — " + result.Artist
	}
	if result.Album != "" {
		line += fmt.Sprintf(" (%s)", result.Album)
	}
	if result.DurationMS > 0 {
		line += " " + shared.FormatDurationMS(result.DurationMS)
	}
	line += fmt.Sprintf(" [%s]", result.Provider)
	r.writePlain("%s\n    %s\n", line, result.URL)
}

// Track looks up a single track on one catalog and prints it.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	tag, err := providers.ParseTag(cmd.String("provider"))
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	userID, err := r.resolveUserID(app, cmd.String("email"))
	if err != nil {
		return err
	}

	track, err := app.agg.Track(ctx, userID, tag, id)
	if err != nil {
		return fmt.Errorf("track lookup failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}
	r.writeResult(1, *track)
	return nil
}

// Recommend fetches catalog recommendations seeded from a track id.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	tag, err := providers.ParseTag(cmd.String("provider"))
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	userID, err := r.resolveUserID(app, cmd.String("email"))
	if err != nil {
		return err
	}

	results, err := app.agg.Recommend(ctx, userID, tag, id, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("recommendations failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	if len(results) == 0 {
		return r.writePlain("No recommendations for %s track %s\n", tag, id)
	}
	for i, result := range results {
		r.writeResult(i+1, result)
	}
	return nil
}

// resolveUserID maps an optional email flag to a user id. Empty email means
// no explicit user; the aggregator then borrows a connected admin.
func (r *Runner) resolveUserID(app *app, email string) (string, error) {
	if email == "" {
		return "", nil
	}
	user, err := app.users.GetByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return user.ID, nil
}
