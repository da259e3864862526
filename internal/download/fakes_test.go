package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/music-downloader/internal/ffmpeg"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/shared"
	"github.com/handiism/music-downloader/internal/ytdlp"
)

var errToolFailed = errors.New("tool failed")

// fakeExtractor writes a small file at the requested location. Queries
// containing "fail" always fail.
type fakeExtractor struct {
	calls    atomic.Int32
	delay    time.Duration
	checkErr error

	mu       sync.Mutex
	requests []ytdlp.Request
}

func (f *fakeExtractor) Extract(ctx context.Context, req ytdlp.Request) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if strings.Contains(req.Query, "fail") {
		return errToolFailed
	}

	ext := strings.TrimPrefix(req.Format.Extension(), ".")
	path := strings.ReplaceAll(req.OutputTemplate, "%(ext)s", ext)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("audio:"+req.Query), 0644)
}

func (f *fakeExtractor) Check() error { return f.checkErr }

// fakeMuxer writes the audio content plus a marker to the output.
type fakeMuxer struct {
	calls    atomic.Int32
	fail     bool
	checkErr error
}

func (f *fakeMuxer) Mux(ctx context.Context, req ffmpeg.Request) error {
	f.calls.Add(1)
	if f.fail {
		return errToolFailed
	}
	audio, err := os.ReadFile(req.Audio)
	if err != nil {
		return err
	}
	if _, err := os.Stat(req.Image); err != nil {
		return err
	}
	return os.WriteFile(req.Output, append(audio, []byte("+cover")...), 0644)
}

func (f *fakeMuxer) Check() error { return f.checkErr }

// fakeFetcher writes a fixed payload for every URL.
type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, url, destPath string) error {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("image:"+url), 0644)
}

type fakeTagger struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeTagger) Annotate(path string, track *model.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return nil
}

type fixture struct {
	extractor *fakeExtractor
	muxer     *fakeMuxer
	fetcher   *fakeFetcher
	tagger    *fakeTagger
	manager   *Manager
	opts      Options
}

func newFixture(dir string) *fixture {
	f := &fixture{
		extractor: &fakeExtractor{},
		muxer:     &fakeMuxer{},
		fetcher:   &fakeFetcher{},
		tagger:    &fakeTagger{},
	}
	f.manager = NewManager(Deps{
		Extractor: f.extractor,
		Muxer:     f.muxer,
		Artwork:   f.fetcher,
		Tagger:    f.tagger,
		Logger:    shared.DiscardLogger(),
	})

	f.opts = DefaultOptions(filepath.Join(dir, "music"))
	f.opts.TempDir = filepath.Join(dir, "temp")
	f.opts.Group = "%artist%/%album%"
	f.opts.Concurrency = 4
	return f
}

func testTracks(names ...string) []*model.Track {
	tracks := make([]*model.Track, 0, len(names))
	for i, name := range names {
		tracks = append(tracks, model.NewTrack(model.TrackInput{
			ID:          name,
			Name:        name,
			Artists:     []string{"Artist"},
			Album:       "Album",
			TrackNumber: i + 1,
			TrackCount:  len(names),
			ArtworkURL:  "https://img.example.com/album.jpg",
		}))
	}
	return tracks
}
