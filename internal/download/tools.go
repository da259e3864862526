package download

import (
	"context"

	"github.com/handiism/music-downloader/internal/ffmpeg"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/ytdlp"
)

// Extractor locates, downloads and transcodes the audio of one track.
// *ytdlp.Extractor is the production implementation.
type Extractor interface {
	Extract(ctx context.Context, req ytdlp.Request) error
	Check() error
}

// Muxer attaches cover art to a transcoded file.
// *ffmpeg.Muxer is the production implementation.
type Muxer interface {
	Mux(ctx context.Context, req ffmpeg.Request) error
	Check() error
}

// ArtworkFetcher downloads a remote image to a local file.
// *http.Client is the production implementation.
type ArtworkFetcher interface {
	DownloadFile(ctx context.Context, url, destPath string) error
}

// Annotator adds extra tags to a finished MP3 file.
// *audio.Tagger is the production implementation.
type Annotator interface {
	Annotate(path string, track *model.Track) error
}
