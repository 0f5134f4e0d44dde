package main

import (
	"context"
	"fmt"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// WishAdd looks up a track on its catalog and appends it to the queue.
func (r *Runner) WishAdd(ctx context.Context, cmd *cli.Command) error {
	tag, err := providers.ParseTag(cmd.String("provider"))
	if err != nil {
		return err
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

	track, err := app.agg.Track(ctx, userID, tag, cmd.String("id"))
	if err != nil {
		return fmt.Errorf("track lookup failed: %w", err)
	}

	wish := &models.Wish{
		Provider:    string(track.Provider),
		TrackID:     track.ID,
		Title:       track.Title,
		Artist:      track.Artist,
		Album:       track.Album,
		ImageURL:    track.ImageURL,
		URL:         track.URL,
		DurationMS:  track.DurationMS,
		RequestedBy: userID,
	}

	if err := app.wishes.Add(wish); err != nil {
		return fmt.Errorf("failed to add wish: %w", err)
	}

	r.logger.Info("wish added", "id", wish.ID, "title", wish.Title, "position", wish.Position)
	return r.writePlain("✓ %s added at position %d\n", wish.Title, wish.Position)
}

// WishList prints the queue in play order.
func (r *Runner) WishList(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	queue, err := app.wishes.List()
	if err != nil {
		return fmt.Errorf("failed to list wishes: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(queue, true)
	}

	if len(queue) == 0 {
		return r.writePlain("The wishlist is empty.\n")
	}

	for _, wish := range queue {
		line := fmt.Sprintf("%2d. %s", wish.Position, wish.Title)
		if wish.Artist != "" {
			line += " — " + wish.Artist
		}
		if wish.DurationMS > 0 {
			line += " " + shared.FormatDurationMS(wish.DurationMS)
		}
		r.writePlain("%s [%s] (%s)\n", line, wish.Provider, wish.ID)
	}
	return nil
}

// WishRemove removes a wish from the queue and closes the position gap.
func (r *Runner) WishRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.wishes.Remove(id); err != nil {
		return fmt.Errorf("failed to remove wish: %w", err)
	}
	return r.writePlain("✓ Wish removed\n")
}

// WishMove moves a wish to a new 1-based position, shifting its neighbors.
func (r *Runner) WishMove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	target := int(cmd.Int("to"))
	if err := app.wishes.Move(id, target); err != nil {
		return fmt.Errorf("failed to move wish: %w", err)
	}
	return r.writePlain("✓ Wish moved to position %d\n", target)
}
