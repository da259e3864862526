package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/handiism/music-downloader/internal/download"
	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/spotify"
)

// ErrMissingCredentials is returned when a Spotify query is made without a
// client id and secret.
var ErrMissingCredentials = spotify.ErrMissingCredentials

// ErrConfigExists is returned by CreateConfigFile when the file is present.
var ErrConfigExists = errors.New("config file already exists")

// Settings holds all configuration options.
type Settings struct {
	// Paths. An empty DownloadsPath means <DataPath>/downloads.
	DownloadsPath string `toml:"downloads_path"`
	DataPath      string `toml:"data_path"`
	Group         string `toml:"group"`

	// Output
	Format         string `toml:"format"`
	Quality        string `toml:"quality"`
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	ModifyTags     bool   `toml:"modify_tags"`

	// Download behaviour
	Retries       int     `toml:"retries"`
	RetryCooldown string  `toml:"retry_cooldown"`
	RetryExponent float64 `toml:"retry_exponent"`
	Concurrency   int     `toml:"concurrency"` // 0 = logical cores
	ToolTimeout   string  `toml:"tool_timeout"`
	HTTPTimeout   string  `toml:"http_timeout"`
	UserAgent     string  `toml:"user_agent"` // empty = http.DefaultUserAgent

	// Cover art settings
	SkipCoverArt    bool `toml:"skip_cover_art"`
	CoverArtResize  bool `toml:"cover_art_resize"`
	CoverArtMaxSize int  `toml:"cover_art_max_size"`

	Tools   ToolSettings    `toml:"tools"`
	Spotify SpotifySettings `toml:"spotify"`
}

// ToolSettings locates the external programs.
type ToolSettings struct {
	YtDlp        string   `toml:"ytdlp"`
	FFmpeg       string   `toml:"ffmpeg"`
	YtDlpOptions []string `toml:"ytdlp_options"`
}

// SpotifySettings holds the Web API credentials and limits.
type SpotifySettings struct {
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	Market       string  `toml:"market"`
	RateLimit    float64 `toml:"rate_limit"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DataPath: DefaultDataDir(),
		Group:    "",

		Format:         string(model.FormatMP3),
		Quality:        "best",
		CreatePlaylist: false,
		PlaylistFormat: model.PlaylistFormatM3U.String(),
		ModifyTags:     true,

		Retries:       download.DefaultRetries,
		RetryCooldown: "0s",
		RetryExponent: 1,
		Concurrency:   0,
		ToolTimeout:   download.DefaultToolTimeout.String(),
		HTTPTimeout:   "60s",

		SkipCoverArt:    false,
		CoverArtResize:  false,
		CoverArtMaxSize: 1000,

		Tools: ToolSettings{
			YtDlp:  "yt-dlp",
			FFmpeg: "ffmpeg",
		},
		Spotify: SpotifySettings{
			Market:    spotify.DefaultMarket,
			RateLimit: spotify.DefaultRateLimit,
		},
	}
}

// Load reads settings from a TOML file on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return settings, nil
}

// Save writes settings to a TOML file, creating its directory.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// CreateConfigFile writes the default settings to path. It refuses to
// overwrite an existing file.
func CreateConfigFile(path string) error {
	if ioutils.FileExists(path) {
		return fmt.Errorf("%w at %s", ErrConfigExists, path)
	}
	return DefaultSettings().Save(path)
}

// Downloads returns the effective downloads directory.
func (s *Settings) Downloads() string {
	if s.DownloadsPath != "" {
		return s.DownloadsPath
	}
	return filepath.Join(s.DataPath, "downloads")
}

// TempDir returns the staging directory purged after every run.
func (s *Settings) TempDir() string {
	return filepath.Join(s.DataPath, "temp")
}

// ToOptions validates the settings and converts them to run options.
func (s *Settings) ToOptions() (download.Options, error) {
	format, err := model.ParseFormat(s.Format)
	if err != nil {
		return download.Options{}, err
	}
	quality, err := model.ParseQuality(s.Quality)
	if err != nil {
		return download.Options{}, err
	}
	playlistFormat, err := model.ParsePlaylistFormat(s.PlaylistFormat)
	if err != nil {
		return download.Options{}, err
	}
	cooldown, err := parseDuration("retry_cooldown", s.RetryCooldown)
	if err != nil {
		return download.Options{}, err
	}
	toolTimeout, err := parseDuration("tool_timeout", s.ToolTimeout)
	if err != nil {
		return download.Options{}, err
	}
	if s.Retries < 0 {
		return download.Options{}, fmt.Errorf("retries must not be negative, got %d", s.Retries)
	}
	if s.Concurrency < 0 {
		return download.Options{}, fmt.Errorf("concurrency must not be negative, got %d", s.Concurrency)
	}

	opts := download.DefaultOptions(s.Downloads())
	opts.TempDir = s.TempDir()
	opts.Group = s.Group
	opts.Format = format
	opts.Quality = quality
	opts.Retries = s.Retries
	opts.RetryCooldown = cooldown
	opts.RetryExponent = s.RetryExponent
	opts.Concurrency = s.Concurrency
	opts.SkipCoverArt = s.SkipCoverArt
	opts.CreatePlaylist = s.CreatePlaylist
	opts.PlaylistFormat = playlistFormat
	opts.ModifyTags = s.ModifyTags
	opts.ToolTimeout = toolTimeout
	opts.RawOptions = s.Tools.YtDlpOptions
	if s.CoverArtResize {
		opts.CoverArtMaxSize = s.CoverArtMaxSize
	}

	return opts, nil
}

// SpotifyConfig returns the Spotify client configuration.
func (s *Settings) SpotifyConfig() spotify.Config {
	timeout, _ := parseDuration("http_timeout", s.HTTPTimeout)
	return spotify.Config{
		ClientID:     s.Spotify.ClientID,
		ClientSecret: s.Spotify.ClientSecret,
		Market:       s.Spotify.Market,
		RateLimit:    s.Spotify.RateLimit,
		Timeout:      timeout,
	}
}

// HTTPTimeoutDuration returns the per request timeout, zero for the
// client default.
func (s *Settings) HTTPTimeoutDuration() time.Duration {
	d, _ := parseDuration("http_timeout", s.HTTPTimeout)
	return d
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative duration", name, value)
	}
	return d, nil
}
