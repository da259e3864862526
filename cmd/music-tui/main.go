package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/handiism/music-downloader/internal/config"
	"github.com/handiism/music-downloader/internal/download"
	"github.com/handiism/music-downloader/internal/shared"
	"github.com/handiism/music-downloader/internal/tui"
)

func main() {
	app := &cli.Command{
		Name:  "music-tui",
		Usage: "Interactive music downloader",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   config.DefaultConfigPath(),
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	settings.ApplyEnv()

	opts, err := settings.ToOptions()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	// The alternate screen owns the terminal, so the logger stays silent and
	// progress reaches the UI through the callback.
	newRunner := func(onProgress func(download.ProgressEvent)) tui.Runner {
		return settings.NewManager(shared.DiscardLogger(), onProgress)
	}

	return tui.Run(settings.NewResolver(), newRunner, opts)
}
