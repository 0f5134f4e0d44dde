// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for database and users.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "user",
				Usage: "Register a team member",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.BoolFlag{
						Name:  "admin",
						Usage: "Grant the admin role",
					},
				},
				Action: r.SetupUser,
			},
		},
	}
}

func emailFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "email",
		Usage:    "Email of the connecting user",
		Required: true,
	}
}

// connectCommand runs the OAuth2 connect flow for a provider.
func connectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect a provider account via OAuth2",
		Arguments: []cli.Argument{&cli.StringArg{Name: "provider"}},
		Flags:     []cli.Flag{configFlag(), emailFlag()},
		Action:    r.Connect,
	}
}

// disconnectCommand removes a stored provider connection.
func disconnectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "disconnect",
		Usage:     "Remove a stored provider connection",
		Arguments: []cli.Argument{&cli.StringArg{Name: "provider"}},
		Flags:     []cli.Flag{configFlag(), emailFlag()},
		Action:    r.Disconnect,
	}
}

// statusCommand shows the connection state for each provider.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show connection state for each provider",
		Flags:  []cli.Flag{configFlag(), emailFlag()},
		Action: r.Status,
	}
}

// searchCommand handles aggregated catalog search.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search music catalogs",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Search with this user's provider connections",
			},
			&cli.BoolFlag{
				Name:  "recommendations",
				Usage: "Include recommendations seeded from the top match",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// trackCommand looks up a single track on one catalog.
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Look up a track by its provider-native ID",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "provider",
				Usage:    "Catalog the track belongs to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Look up with this user's provider connections",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Track,
	}
}

// recommendCommand fetches catalog recommendations for a seed track.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Usage:     "Fetch recommendations seeded from a track",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Catalog to ask for recommendations",
				Value: "spotify",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of recommendations",
				Value: 5,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Recommend with this user's provider connections",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Recommend,
	}
}

// wishCommand handles wishlist queue operations.
func wishCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "wish",
		Usage: "Manage the wishlist queue",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a track to the queue",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "provider",
						Usage:    "Catalog the track belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Provider-native track ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Requesting user's email",
					},
				},
				Action: r.WishAdd,
			},
			{
				Name:   "list",
				Usage:  "List the queue in play order",
				Flags:  []cli.Flag{configFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.WishList,
			},
			{
				Name:      "remove",
				Usage:     "Remove a wish and close the gap",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{configFlag()},
				Action:    r.WishRemove,
			},
			{
				Name:      "move",
				Usage:     "Move a wish to a new position",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Target position (1-based)",
						Required: true,
					},
				},
				Action: r.WishMove,
			},
		},
	}
}

// providersCommand manages provider enablement and ordering.
func providersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "Configure search providers",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show enabled providers and priority order",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ProvidersShow,
			},
			{
				Name:      "enable",
				Usage:     "Set the enabled provider list (comma-separated)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "providers"}},
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProvidersEnable,
			},
			{
				Name:      "order",
				Usage:     "Set the provider priority order (comma-separated)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "providers"}},
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProvidersOrder,
			},
		},
	}
}

// serveCommand runs the HTTP API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API server",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// pickCommand launches the interactive search-and-wish picker.
func pickCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Aliases:   []string{"interactive", "tui"},
		Usage:     "Search and pick a track for the wishlist interactively",
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Requesting user's email",
			},
		},
		Action: r.Pick,
	}
}
