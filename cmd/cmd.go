// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
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
	}
}

// playlistCommand handles playlist CRUD operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "list",
				Usage: "List all playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to delete",
						Required: true,
					},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "seed",
				Usage: "Fill a playlist with generated sample tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to seed",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of tracks to generate",
						Value:   600,
					},
				},
				Action: r.PlaylistSeed,
			},
		},
	}
}

// tracksCommand handles track listing and reordering
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"tr"},
		Usage:   "Track operations within a playlist",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List one page of tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number to fetch",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Tracks per page (0 uses the configured size)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort field: position, title, artist, added",
						Value: "position",
					},
					&cli.BoolFlag{
						Name:  "desc",
						Usage: "Sort descending",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Filter by title, artist, or album substring",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TracksList,
			},
			{
				Name:  "add",
				Usage: "Append a track to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Track artist",
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Track album",
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Track duration in seconds",
					},
				},
				Action: r.TrackAdd,
			},
			{
				Name:  "rm",
				Usage: "Remove a track from a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Track ID to remove",
						Required: true,
					},
				},
				Action: r.TrackRemove,
			},
			{
				Name:  "move",
				Usage: "Move a track to a new index",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "track",
						Aliases:  []string{"t"},
						Usage:    "Track ID to move",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Target index (0-based)",
						Required: true,
					},
				},
				Action: r.TrackMove,
			},
			{
				Name:  "renormalize",
				Usage: "Rewrite a playlist's positions as a dense integer sequence",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
				},
				Action: r.TracksRenormalize,
			},
			{
				Name:  "export",
				Usage: "Export a playlist's tracks to CSV or text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: csv or txt",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.TracksExport,
			},
		},
	}
}

// browseCommand returns the top-level TUI command for interactive browsing.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive library browser",
		Action:  r.Browse,
	}
}
