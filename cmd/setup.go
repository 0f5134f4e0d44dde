package main

import (
	"context"
	"fmt"
	"os"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupUser registers a team member, optionally with the admin role.
func (r *Runner) SetupUser(ctx context.Context, cmd *cli.Command) error {
	app, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	user := &models.User{
		Email: cmd.String("email"),
		Name:  cmd.String("name"),
		Role:  models.RoleMember,
	}
	if cmd.Bool("admin") {
		user.Role = models.RoleAdmin
	}

	if err := app.users.Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
	return r.writePlain("✓ Registered %s (%s)\n", user.Email, user.Role)
}
