package config

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/handiism/music-downloader/internal/audio"
	"github.com/handiism/music-downloader/internal/bandcamp"
	"github.com/handiism/music-downloader/internal/catalog"
	"github.com/handiism/music-downloader/internal/download"
	"github.com/handiism/music-downloader/internal/ffmpeg"
	"github.com/handiism/music-downloader/internal/http"
	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/spotify"
	"github.com/handiism/music-downloader/internal/ytdlp"
)

// NewResolver builds the catalog resolver: Spotify links and searches,
// and Bandcamp links.
func (s *Settings) NewResolver() *catalog.Resolver {
	sp := spotify.New(s.SpotifyConfig())
	bc := bandcamp.NewSource(s.httpClient())
	return catalog.NewResolver(sp, sp, bc)
}

// NewManager builds a download manager driving the configured tools.
func (s *Settings) NewManager(logger *log.Logger, onProgress func(download.ProgressEvent)) *download.Manager {
	// yt-dlp only needs the location for an explicit path; a bare name is
	// looked up on PATH by both tools.
	var ffmpegLocation string
	if strings.ContainsRune(s.Tools.FFmpeg, filepath.Separator) {
		ffmpegLocation = s.Tools.FFmpeg
	}

	return download.NewManager(download.Deps{
		Extractor: ytdlp.New(ytdlp.Config{
			Executable:     s.Tools.YtDlp,
			FFmpegLocation: ffmpegLocation,
		}),
		Muxer:      ffmpeg.New(s.Tools.FFmpeg),
		Artwork:    s.httpClient(),
		Tagger:     audio.NewTagger(),
		Images:     ioutils.NewImageService(),
		Logger:     logger,
		OnProgress: onProgress,
	})
}

func (s *Settings) httpClient() *http.Client {
	return http.NewClient(
		http.WithTimeout(s.HTTPTimeoutDuration()),
		http.WithUserAgent(s.UserAgent),
	)
}
