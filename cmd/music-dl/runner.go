package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/handiism/music-downloader/internal/catalog"
	"github.com/handiism/music-downloader/internal/config"
	"github.com/handiism/music-downloader/internal/http"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/shared"
	"github.com/handiism/music-downloader/internal/spotify"
)

var errMissingQuery = errors.New("a link or search query is required")

// Runner holds the dependencies shared by the command actions.
type Runner struct {
	logger *log.Logger
	out    io.Writer
}

func newRunner(logger *log.Logger, out io.Writer) *Runner {
	return &Runner{logger: logger, out: out}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Download resolves the query and downloads every track it names.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errMissingQuery
	}

	settings, err := r.loadSettings(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, settings)

	opts, err := settings.ToOptions()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	queryType, ignored, err := searchType(cmd, query)
	if err != nil {
		return err
	}
	shared.SetVerbose(r.logger, cmd.Bool("verbose"))
	if ignored {
		r.logger.Warn("--type is ignored for links", "type", cmd.String("type"))
	}

	r.logger.Info("resolving", "query", query, "type", queryType)
	tracks, err := settings.NewResolver().Resolve(ctx, query, catalog.Options{
		Type:         queryType,
		ArtistAlbums: cmd.Bool("artist-albums"),
	})
	if err != nil {
		return describeResolveError(err)
	}
	if len(tracks) == 0 {
		r.printf("Nothing found for %q\n", query)
		return nil
	}
	r.logger.Info("resolved", "tracks", len(tracks))

	if cmd.Bool("dry-run") {
		for i, t := range tracks {
			r.printf("%3d. %s  [%s]\n", i+1, t, t.Query())
		}
		return nil
	}

	manager := settings.NewManager(r.logger, nil)
	if err := manager.Preflight(opts); err != nil {
		return err
	}

	report := manager.Run(ctx, tracks, opts)
	r.printf("%s\n", report.Summary())

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d tracks failed", n, report.Total)
	}
	return nil
}

// searchType returns the query type for free text. A link names its own
// type, so ignored reports whether an explicit --type was given for one.
func searchType(cmd *cli.Command, query string) (qt model.QueryType, ignored bool, err error) {
	if catalog.IsLink(query) {
		return "", cmd.IsSet("type"), nil
	}
	qt, err = model.ParseQueryType(cmd.String("type"))
	return qt, false, err
}

func describeResolveError(err error) error {
	switch {
	case errors.Is(err, spotify.ErrMissingCredentials):
		return fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or add them to the config file", err)
	case errors.Is(err, http.ErrConnectivity):
		return fmt.Errorf("could not reach the catalog, check your internet connection: %w", err)
	case errors.Is(err, catalog.ErrUnsupportedURL):
		return fmt.Errorf("%w; only Spotify and Bandcamp links are supported", err)
	}
	return err
}

func (r *Runner) loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "err", err)
	}
	settings.ApplyEnv()

	return settings, nil
}

// applyFlags overrides settings with the flags given on the command line.
func applyFlags(cmd *cli.Command, s *config.Settings) {
	if cmd.IsSet("output") {
		s.DownloadsPath = cmd.String("output")
	}
	if cmd.IsSet("group") {
		s.Group = cmd.String("group")
	}
	if cmd.IsSet("format") {
		s.Format = cmd.String("format")
	}
	if cmd.IsSet("quality") {
		s.Quality = cmd.String("quality")
	}
	if cmd.IsSet("playlist") {
		s.CreatePlaylist = cmd.Bool("playlist")
	}
	if cmd.IsSet("playlist-format") {
		s.PlaylistFormat = cmd.String("playlist-format")
	}
	if cmd.IsSet("skip-cover-art") {
		s.SkipCoverArt = cmd.Bool("skip-cover-art")
	}
	if cmd.IsSet("retries") {
		s.Retries = cmd.Int("retries")
	}
	if cmd.IsSet("concurrency") {
		s.Concurrency = cmd.Int("concurrency")
	}
	if cmd.IsSet("ytdl-option") {
		s.Tools.YtDlpOptions = append(s.Tools.YtDlpOptions, cmd.StringSlice("ytdl-option")...)
	}
}

// ConfigInit writes the default configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	r.printf("✓ Config written to %s\n", path)
	return nil
}

// ConfigPath prints the default configuration file path.
func (r *Runner) ConfigPath(ctx context.Context, cmd *cli.Command) error {
	r.printf("%s\n", config.DefaultConfigPath())
	return nil
}
