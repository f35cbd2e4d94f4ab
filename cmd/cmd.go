// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config.toml from the built-in template",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles Deezer authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Deezer authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize dzx with Deezer using OAuth2 and save the access token",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the Deezer account the saved token belongs to",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistCommand handles playlist read, migration, copy and deletion
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Deezer playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "read",
				Usage: "Read a playlist by link or id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt or json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export path (file base for csv, directory for markdown)",
					},
				},
				Action: r.PlaylistRead,
			},
			{
				Name:  "migrate",
				Usage: "Create a playlist from a JSON migration request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the request JSON (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write the missing-tracks report to this path (.md for Markdown)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the outcome as JSON",
					},
				},
				Action: r.PlaylistMigrate,
			},
			{
				Name:  "copy",
				Usage: "Copy a playlist's tracks into a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name of the new playlist (defaults to the source name)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Description of the new playlist (defaults to the source description)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write the missing-tracks report to this path (.md for Markdown)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the outcome as JSON",
					},
				},
				Action: r.PlaylistCopy,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist by link or id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Action: r.PlaylistDelete,
			},
		},
	}
}

// apiCommand handles direct catalog API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET against the catalog, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand starts the HTTP request surface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the playlist HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist migration.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist migration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where the TUI writes its logs",
				Value: "./tmp/dzx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
