package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/music-downloader/internal/audio"
	"github.com/handiism/music-downloader/internal/ffmpeg"
	"github.com/handiism/music-downloader/internal/http"
	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/shared"
	"github.com/handiism/music-downloader/internal/ytdlp"
)

// ErrToolMissing is returned by Preflight when an external tool is absent.
var ErrToolMissing = errors.New("required tool is missing")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Track is the "Artist - Name" the event refers to, if any.
	Track string
}

// Options control one Run.
type Options struct {
	// OutputDir is the destination root.
	OutputDir string

	// TempDir is the staging area. It is purged at the end of every run.
	TempDir string

	// Group is the grouping template, e.g. "%artist%/%album%".
	Group string

	Format  model.Format
	Quality model.Quality

	// Retries is the number of extra attempts per external tool call.
	Retries int

	// RetryCooldown and RetryExponent shape the wait between attempts:
	// cooldown * exponent^(retry-1). A zero cooldown retries immediately.
	RetryCooldown time.Duration
	RetryExponent float64

	// Concurrency bounds the worker pool. Zero means one worker per logical CPU.
	Concurrency int

	SkipCoverArt bool

	// CoverArtMaxSize scales cached covers to fit; zero keeps the original size.
	CoverArtMaxSize int

	CreatePlaylist bool
	PlaylistFormat model.PlaylistFormat

	// ModifyTags enables ID3 annotation of finished MP3 files.
	ModifyTags bool

	// ToolTimeout bounds every external tool invocation. Zero disables it.
	ToolTimeout time.Duration

	// RawOptions are passed to the extraction tool after all defaults.
	RawOptions []string
}

// DefaultRetries is the retry bound used by DefaultOptions.
const DefaultRetries = 3

// DefaultToolTimeout is the per-invocation limit used by DefaultOptions.
const DefaultToolTimeout = 10 * time.Minute

// DefaultOptions returns options for an mp3 download into dir.
func DefaultOptions(dir string) Options {
	return Options{
		OutputDir:     dir,
		TempDir:       filepath.Join(dir, ".temp"),
		Format:        model.FormatMP3,
		Quality:       model.QualityBest,
		Retries:       DefaultRetries,
		RetryExponent: 1,
		ModifyTags:    true,
		ToolTimeout:   DefaultToolTimeout,
	}
}

func (o Options) workers() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.NumCPU()
}

// Deps are the collaborators of a Manager. Nil fields get production
// implementations.
type Deps struct {
	Extractor  Extractor
	Muxer      Muxer
	Artwork    ArtworkFetcher
	Tagger     Annotator
	Images     *ioutils.ImageService
	Logger     *log.Logger
	OnProgress func(ProgressEvent)
}

// Manager runs batches of track acquisitions.
type Manager struct {
	extractor Extractor
	muxer     Muxer
	artwork   ArtworkFetcher
	tagger    Annotator
	images    *ioutils.ImageService
	logger    *log.Logger

	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(deps Deps) *Manager {
	m := &Manager{
		extractor:  deps.Extractor,
		muxer:      deps.Muxer,
		artwork:    deps.Artwork,
		tagger:     deps.Tagger,
		images:     deps.Images,
		logger:     deps.Logger,
		onProgress: deps.OnProgress,
	}

	if m.extractor == nil {
		m.extractor = ytdlp.New(ytdlp.Config{})
	}
	if m.muxer == nil {
		m.muxer = ffmpeg.New("")
	}
	if m.artwork == nil {
		m.artwork = http.NewClient()
	}
	if m.tagger == nil {
		m.tagger = audio.NewTagger()
	}
	if m.images == nil {
		m.images = ioutils.NewImageService()
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}

	return m
}

// Preflight verifies the external tools a run with opts needs. A failure
// should abort the batch before any job is dispatched.
func (m *Manager) Preflight(opts Options) error {
	if err := m.extractor.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrToolMissing, err)
	}
	if !opts.SkipCoverArt && opts.Format.SupportsCoverArt() {
		if err := m.muxer.Check(); err != nil {
			return fmt.Errorf("%w: %w", ErrToolMissing, err)
		}
	}
	return nil
}

// GetProgress returns finished and total jobs of the current run.
func (m *Manager) GetProgress() (filesDone, filesTotal int32) {
	return atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// Run acquires every track and returns the aggregate report.
//
// Run never returns an error: each failure is recorded in the report.
// It blocks until every dispatched job is done, then writes the optional
// playlist and purges opts.TempDir.
func (m *Manager) Run(ctx context.Context, tracks []*model.Track, opts Options) *BatchReport {
	start := time.Now()
	report := &BatchReport{Total: len(tracks)}

	atomic.StoreInt32(&m.totalFiles, int32(len(tracks)))
	atomic.StoreInt32(&m.downloadedFiles, 0)

	if len(tracks) == 0 {
		m.progress(ProgressEvent{Message: "Nothing to download", Level: LevelInfo})
		report.Elapsed = time.Since(start)
		return report
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %d tracks with %d workers", len(tracks), opts.workers()), Level: LevelInfo})

	if err := ioutils.EnsureDir(opts.TempDir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating temp directory: %v", err), Level: LevelWarning})
	}

	covers := NewCoverArtCache(filepath.Join(opts.TempDir, "covers"), m.artwork, m.coverImages(opts), opts.CoverArtMaxSize)
	results := make([]JobResult, len(tracks))

	var g errgroup.Group
	g.SetLimit(opts.workers())

	// A track listed twice maps to the same file; the later job waits and
	// then finds it in place.
	var dests destLocks

	for i, track := range tracks {
		g.Go(func() error {
			j := newJob(i, track, opts)
			m.transition(j, StatePending)
			unlock := dests.lock(j.dest)
			results[i] = m.runJob(ctx, j, opts, covers)
			unlock()
			atomic.AddInt32(&m.downloadedFiles, 1)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Succeeded() {
			report.Successes = append(report.Successes, res)
		} else {
			report.Failures = append(report.Failures, res)
		}
	}

	if opts.CreatePlaylist && len(report.Successes) > 0 {
		path, err := m.writePlaylist(ctx, report.Successes, opts)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			report.PlaylistPath = path
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
		}
	}

	if err := ioutils.CleanDir(opts.TempDir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error cleaning temp directory: %v", err), Level: LevelWarning})
	}

	report.Elapsed = time.Since(start)

	level := LevelSuccess
	if len(report.Failures) > 0 {
		level = LevelWarning
	}
	m.progress(ProgressEvent{Message: report.Summary(), Level: level})

	return report
}

func (m *Manager) coverImages(opts Options) *ioutils.ImageService {
	if opts.CoverArtMaxSize <= 0 {
		return nil
	}
	return m.images
}

// writePlaylist writes the successes, in queue order, to a playlist file
// in the destination root.
func (m *Manager) writePlaylist(ctx context.Context, successes []JobResult, opts Options) (string, error) {
	title := PlaylistTitle(successes[0].Track)
	creator := audio.NewPlaylistCreator(opts.PlaylistFormat)
	path := filepath.Join(opts.OutputDir, ioutils.SanitizeFileName(title)+opts.PlaylistFormat.Extension())

	entries := make([]audio.Entry, 0, len(successes))
	for _, res := range successes {
		rel, err := filepath.Rel(opts.OutputDir, res.Location)
		if err != nil {
			rel = res.Location
		}
		entries = append(entries, audio.Entry{Index: res.Index, Track: res.Track, Path: rel})
	}

	if err := ioutils.EnsureDir(opts.OutputDir); err != nil {
		return "", err
	}
	if err := ioutils.WriteFile(ctx, path, []byte(creator.CreatePlaylist(title, entries))); err != nil {
		return "", err
	}
	return path, nil
}

// PlaylistTitle picks the playlist title for a batch from its first
// success: the grouping hint, then album, primary artist and track name.
func PlaylistTitle(t *model.Track) string {
	for _, candidate := range []string{t.Playlist, t.Album, t.PrimaryArtist(), t.Name} {
		if candidate != "" {
			return candidate
		}
	}
	return t.String()
}

func (m *Manager) waitForRetry(ctx context.Context, opts Options, tries int) error {
	if opts.RetryCooldown <= 0 {
		return ctx.Err()
	}
	exp := opts.RetryExponent
	if exp <= 0 {
		exp = 1
	}
	cooldown := time.Duration(float64(opts.RetryCooldown) * math.Pow(exp, float64(tries)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cooldown):
		return nil
	}
}

func (m *Manager) transition(j *job, s State) {
	j.state = s
	m.logger.Debug("state", "track", j.track.String(), "index", j.index, "state", s.String())
}

func (m *Manager) progress(event ProgressEvent) {
	var kv []any
	if event.Track != "" {
		kv = append(kv, "track", event.Track)
	}

	switch event.Level {
	case LevelVerbose:
		m.logger.Debug(event.Message, kv...)
	case LevelWarning:
		m.logger.Warn(event.Message, kv...)
	case LevelError:
		m.logger.Error(event.Message, kv...)
	default:
		m.logger.Info(event.Message, kv...)
	}

	if m.onProgress != nil {
		m.onProgress(event)
	}
}
