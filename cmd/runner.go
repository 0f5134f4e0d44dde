package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/teamhub/wunschbox/internal/aggregator"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/settings"
	"github.com/teamhub/wunschbox/internal/shared"
	"github.com/teamhub/wunschbox/internal/tokens"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, connectCommand, disconnectCommand, statusCommand,
		searchCommand, trackCommand, recommendCommand, wishCommand,
		providersCommand, serveCommand, pickCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app bundles the database-backed dependencies opened per command
// invocation. Callers must Close it.
type app struct {
	db       *sql.DB
	users    *repositories.UserRepository
	wishes   *repositories.WishRepository
	manager  *tokens.Manager
	settings *settings.Service
	agg      *aggregator.Aggregator
}

func (a *app) Close() error {
	return a.db.Close()
}

// loadConfig resolves the config file named by the command's --config flag,
// falling back to embedded defaults when it does not exist.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}

	if _, err := os.Stat(path); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return r.config
	}

	r.config = config
	return config
}

// openApp opens the database and wires the repository, token, and search
// layers for a command invocation.
func (r *Runner) openApp(cmd *cli.Command) (*app, error) {
	config := r.loadConfig(cmd)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	box, err := shared.LoadSecretBox(r.logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	users := repositories.NewUserRepository(db)
	wishes := repositories.NewWishRepository(db)
	tokenRepo := repositories.NewTokenRepository(db, box)
	settingsRepo := repositories.NewSettingsRepository(db)

	svc := settings.NewService(settingsRepo, config, r.logger)
	manager := tokens.NewManager(tokenRepo, svc, r.logger)
	resolver := aggregator.NewAdminResolver(users, manager)
	agg := aggregator.New(svc, manager, resolver, r.httpClient, r.logger)

	return &app{
		db:       db,
		users:    users,
		wishes:   wishes,
		manager:  manager,
		settings: svc,
		agg:      agg,
	}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
