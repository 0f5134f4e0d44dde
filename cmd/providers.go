package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProvidersShow prints the enabled provider set and the priority order.
func (r *Runner) ProvidersShow(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	r.writePlain("Enabled: %s\n", joinTags(app.settings.EnabledProviders()))
	r.writePlain("Order:   %s\n", joinTags(app.settings.ProviderOrder()))
	return nil
}

// ProvidersEnable replaces the enabled provider set.
func (r *Runner) ProvidersEnable(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	tags, err := splitTags(cmd.StringArg("providers"))
	if err != nil {
		return err
	}

	if err := app.settings.SetEnabledProviders(tags); err != nil {
		return err
	}
	return r.writePlain("✓ Enabled providers: %s\n", joinTags(tags))
}

// ProvidersOrder replaces the provider priority order.
func (r *Runner) ProvidersOrder(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	tags, err := splitTags(cmd.StringArg("providers"))
	if err != nil {
		return err
	}

	if err := app.settings.SetProviderOrder(tags); err != nil {
		return err
	}
	return r.writePlain("✓ Provider order: %s\n", joinTags(tags))
}

func splitTags(raw string) ([]providers.Tag, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: providers", shared.ErrMissingArgument)
	}

	var tags []providers.Tag
	for _, name := range strings.Split(raw, ",") {
		tag, err := providers.ParseTag(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func joinTags(tags []providers.Tag) string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = string(tag)
	}
	return strings.Join(names, ", ")
}
