// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "flix",
		Usage:    "Browse the myFlix movie catalog and manage your favorites",
		Version:  "0.1.0",
		Commands: r.register(),
	}
}

// authCommands handles sign up, sign in and sign out
func authCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register",
			Usage: "Create an account and sign in",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
				&cli.StringFlag{Name: "birthday", Usage: "Birthday (YYYY-MM-DD)"},
			},
			Action: r.Register,
		},
		{
			Name:  "login",
			Usage: "Sign in and store the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
			},
			Action: r.Login,
		},
		{
			Name:   "logout",
			Usage:  "Forget the stored session",
			Action: r.Logout,
		},
		{
			Name:   "status",
			Usage:  "Show who is signed in",
			Action: r.Status,
		},
	}
}

// moviesCommands handles catalog browsing
func moviesCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:    "movies",
			Aliases: []string{"m"},
			Usage:   "Browse the catalog",
			Commands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List every movie, favorites starred",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "offline", Usage: "Use the locally cached catalog"},
						&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
						&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
					},
					Action: r.MoviesList,
				},
				{
					Name:      "show",
					Usage:     "Show a movie by title",
					Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
					Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
					Action:    r.MoviesShow,
				},
				{
					Name:      "director",
					Usage:     "Show a director by name",
					Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
					Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
					Action:    r.MoviesDirector,
				},
				{
					Name:      "genre",
					Usage:     "Show a genre by name",
					Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
					Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
					Action:    r.MoviesGenre,
				},
			},
		},
	}
}

// favoritesCommands handles the signed-in user's favorites
func favoritesCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:    "favorites",
			Aliases: []string{"fav"},
			Usage:   "Manage favorite movies",
			Commands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List favorites in catalog order",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
						&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
					},
					Action: r.FavoritesList,
				},
				{
					Name:      "add",
					Usage:     "Add one or more movies by id",
					ArgsUsage: "<id>...",
					Flags:     []cli.Flag{workersFlag()},
					Action:    r.FavoritesAdd,
				},
				{
					Name:      "remove",
					Aliases:   []string{"rm"},
					Usage:     "Remove one or more movies by id",
					ArgsUsage: "<id>...",
					Flags:     []cli.Flag{workersFlag()},
					Action:    r.FavoritesRemove,
				},
				{
					Name:  "export",
					Usage: "Export favorites to a file",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, markdown, txt or json", Value: "json"},
						&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: {username}_favorites.{ext})"},
					},
					Action: r.FavoritesExport,
				},
			},
		},
	}
}

// profileCommands handles the account record
func profileCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "profile",
			Usage: "Show, edit or delete your profile",
			Commands: []*cli.Command{
				{
					Name:   "show",
					Usage:  "Show your profile and favorites",
					Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
					Action: r.ProfileShow,
				},
				{
					Name:  "edit",
					Usage: "Change profile fields; omitted fields are left alone",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "New username"},
						&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password"},
						&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "New email address"},
						&cli.StringFlag{Name: "birthday", Usage: "New birthday (YYYY-MM-DD)"},
					},
					Action: r.ProfileEdit,
				},
				{
					Name:  "delete",
					Usage: "Delete your account",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
					},
					Action: r.ProfileDelete,
				},
			},
		},
	}
}

// setupCommands handles setup operations for configuration and the database.
func setupCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "setup",
			Usage: "Setup and configuration commands",
			Commands: []*cli.Command{
				{
					Name:  "config",
					Usage: "Write a config file from the bundled template",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:    "config",
							Aliases: []string{"c"},
							Usage:   "Path to configuration file",
							Value:   "config.toml",
						},
					},
					Action: r.SetupConfig,
				},
				{
					Name:  "database",
					Usage: "Initialize database and run migrations",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:    "config",
							Aliases: []string{"c"},
							Usage:   "Path to configuration file",
							Value:   "config.toml",
						},
					},
					Action: r.SetupDatabase,
				},
			},
		},
	}
}

// tuiCommands returns the top-level TUI command for the interactive profile screen.
func tuiCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:    "tui",
			Aliases: []string{"interactive", "ui"},
			Usage:   "Launch interactive TUI for browsing and favorites",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI runs", Value: "./tmp/flix-tui.log"},
			},
			Action: r.TUI,
		},
	}
}

// serveCommands runs the local reference backend.
func serveCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "serve",
			Usage: "Run an in-memory movie backend for local development",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "addr", Usage: "Listen address (default: server.host:server.port)"},
			},
			Action: r.Serve,
		},
	}
}

func workersFlag() cli.Flag {
	return &cli.IntFlag{Name: "workers", Usage: "Concurrent requests for several ids", Value: 3}
}
