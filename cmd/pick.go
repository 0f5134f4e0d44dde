package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teamhub/wunschbox/internal/aggregator"
	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/teamhub/wunschbox/internal/ui"
	"github.com/urfave/cli/v3"
)

// Pick searches the catalogs and launches the interactive picker so the
// chosen track lands on the wishlist.
func (r *Runner) Pick(ctx context.Context, cmd *cli.Command) error {
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
		Query:  query,
		Limit:  int(cmd.Int("limit")),
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(resp.Results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	enqueue := func(result providers.SearchResult) (*models.Wish, error) {
		wish := &models.Wish{
			Provider:    string(result.Provider),
			TrackID:     result.ID,
			Title:       result.Title,
			Artist:      result.Artist,
			Album:       result.Album,
			ImageURL:    result.ImageURL,
			URL:         result.URL,
			DurationMS:  result.DurationMS,
			RequestedBy: userID,
		}
		if err := app.wishes.Add(wish); err != nil {
			return nil, err
		}
		return wish, nil
	}

	model := ui.NewModel(query, resp.Results, enqueue)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}
	return nil
}
