package main

import (
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "music-dl",
		Usage:     "Download tracks, albums, playlists and podcasts from Spotify and Bandcamp links or searches",
		Version:   "1.0.0",
		ArgsUsage: "<link or search query>",
		Flags:     downloadFlags(),
		Action:    r.Download,
		Commands: []*cli.Command{
			configCommand(r),
		},
	}
}

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "What a search query looks for: track, album, playlist, artist, episode or show",
			Value:   "track",
		},
		&cli.StringFlag{
			Name:    "quality",
			Aliases: []string{"q"},
			Usage:   "Audio quality: best, worst, 320k, 256k, 192k, 128k, 96k or 32k",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: mp3, aac, flac, m4a, opus, vorbis or wav",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides config)",
		},
		&cli.StringFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Sub directory template using %artist%, %album% and %playlist%",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.BoolFlag{
			Name:    "playlist",
			Aliases: []string{"m"},
			Usage:   "Write a playlist of the downloaded tracks",
		},
		&cli.StringFlag{
			Name:  "playlist-format",
			Usage: "Playlist format: m3u, pls, wpl or zpl",
		},
		&cli.BoolFlag{
			Name:  "skip-cover-art",
			Usage: "Do not embed cover art",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Extra attempts per failing tool invocation",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Parallel downloads, 0 for one per logical CPU",
		},
		&cli.BoolFlag{
			Name:  "artist-albums",
			Usage: "Download every album of an artist instead of the top tracks",
		},
		&cli.StringSliceFlag{
			Name:  "ytdl-option",
			Usage: "Raw option passed to yt-dlp, may be repeated",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Show verbose output",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Resolve the query and list the tracks without downloading",
		},
	}
}

func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write a configuration file with the default settings (at --config if given)",
				Action: r.ConfigInit,
			},
			{
				Name:   "path",
				Usage:  "Print the default configuration file path",
				Action: r.ConfigPath,
			},
		},
	}
}
