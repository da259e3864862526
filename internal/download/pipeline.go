package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/handiism/music-downloader/internal/ffmpeg"
	ioutils "github.com/handiism/music-downloader/internal/io"
	"github.com/handiism/music-downloader/internal/model"
	"github.com/handiism/music-downloader/internal/ytdlp"
)

// State is a step of the per-track acquisition pipeline.
type State int

const (
	StatePending State = iota
	StateShortCircuitExists
	StateFetching
	StateTranscoding
	StateArtworkMerge
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateShortCircuitExists:
		return "exists"
	case StateFetching:
		return "fetching"
	case StateTranscoding:
		return "transcoding"
	case StateArtworkMerge:
		return "artwork"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// job is one in-flight acquisition. It lives for a single Run.
type job struct {
	index    int
	track    *model.Track
	dest     string
	tempBase string
	state    State
	attempts int
}

func newJob(index int, track *model.Track, opts Options) *job {
	name := fmt.Sprintf("%s-%d", ioutils.SanitizeFileName(track.ID), index)
	return &job{
		index:    index,
		track:    track,
		dest:     track.Destination(opts.OutputDir, opts.Group, opts.Format),
		tempBase: filepath.Join(opts.TempDir, name),
	}
}

func (j *job) result(outcome Outcome, err error) JobResult {
	j.state = StateDone
	return JobResult{
		Index:    j.index,
		Track:    j.track,
		Location: j.dest,
		Outcome:  outcome,
		Err:      err,
		Attempts: j.attempts,
	}
}

// destLocks serializes jobs that write the same output file.
type destLocks struct {
	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

func (l *destLocks) lock(path string) (unlock func()) {
	l.mu.Lock()
	if l.paths == nil {
		l.paths = make(map[string]*sync.Mutex)
	}
	pm, ok := l.paths[path]
	if !ok {
		pm = &sync.Mutex{}
		l.paths[path] = pm
	}
	l.mu.Unlock()

	pm.Lock()
	return pm.Unlock
}

// runJob drives a single track through the pipeline. It never panics on
// tool or filesystem failures; they are folded into the JobResult.
func (m *Manager) runJob(ctx context.Context, j *job, opts Options, covers *CoverArtCache) JobResult {
	if err := ctx.Err(); err != nil {
		return j.result(OutcomeCancelled, err)
	}

	if ioutils.FileExists(j.dest) {
		m.transition(j, StateShortCircuitExists)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(j.dest)), Level: LevelVerbose, Track: j.track.String()})
		res := j.result(OutcomeSuccess, nil)
		res.Skipped = true
		return res
	}

	audioPath, err := m.extract(ctx, j, opts)
	if err != nil {
		if ctx.Err() != nil {
			return j.result(OutcomeCancelled, ctx.Err())
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Extraction failed after %d attempts: %v", j.attempts, err), Level: LevelError, Track: j.track.String()})
		return j.result(OutcomeExtractionFailed, err)
	}
	defer os.Remove(audioPath)

	if err := ioutils.EnsureDir(filepath.Dir(j.dest)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cannot create destination: %v", err), Level: LevelError, Track: j.track.String()})
		return j.result(OutcomeFilesystemError, err)
	}

	merged := false
	if !opts.SkipCoverArt && opts.Format.SupportsCoverArt() {
		m.transition(j, StateArtworkMerge)
		merged = m.mergeArtwork(ctx, j, opts, covers, audioPath)
	}

	m.transition(j, StateFinalizing)
	if !merged {
		if err := ioutils.MoveFile(audioPath, j.dest); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Cannot move file into place: %v", err), Level: LevelError, Track: j.track.String()})
			return j.result(OutcomeFilesystemError, err)
		}
	}

	if opts.ModifyTags && opts.Format == model.FormatMP3 && m.tagger != nil {
		if err := m.tagger.Annotate(j.dest, j.track); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging: %v", err), Level: LevelWarning, Track: j.track.String()})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(j.dest)), Level: LevelSuccess, Track: j.track.String()})
	return j.result(OutcomeSuccess, nil)
}

// extract runs the extraction tool until it produces a file or the retry
// budget is spent. Each attempt is a fresh invocation.
func (m *Manager) extract(ctx context.Context, j *job, opts Options) (string, error) {
	req := ytdlp.Request{
		Query:          j.track.Query(),
		OutputTemplate: j.tempBase + ".%(ext)s",
		Format:         opts.Format,
		Quality:        opts.Quality,
		Tags:           j.track.Tags(),
		RawOptions:     opts.RawOptions,
	}
	if opts.Format == model.FormatMP3 {
		req.ForceCodec = "libmp3lame"
	}

	var lastErr error
	maxAttempts := 1 + max(opts.Retries, 0)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 1 {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d", attempt-1, opts.Retries), Level: LevelWarning, Track: j.track.String()})
			if err := m.waitForRetry(ctx, opts, attempt-2); err != nil {
				return "", err
			}
		}

		m.transition(j, StateFetching)
		j.attempts = attempt

		err := m.withToolTimeout(ctx, opts, func(ctx context.Context) error {
			return m.extractor.Extract(ctx, req)
		})
		m.transition(j, StateTranscoding)

		if err == nil {
			if path, ok := findOutput(j.tempBase, opts.Format); ok {
				return path, nil
			}
			err = errNoOutput
		}
		lastErr = err
		m.progress(ProgressEvent{Message: fmt.Sprintf("Attempt %d failed: %v", attempt, err), Level: LevelVerbose, Track: j.track.String()})
	}

	return "", lastErr
}

var errNoOutput = errors.New("extraction produced no file")

// mergeArtwork muxes the cached cover into the audio, writing the final
// destination. It reports false when the caller must move the plain file
// instead.
func (m *Manager) mergeArtwork(ctx context.Context, j *job, opts Options, covers *CoverArtCache, audioPath string) bool {
	cover, err := covers.GetOrFetch(ctx, j.track.CoverKey(), j.track.ArtworkURL)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cover art unavailable: %v", err), Level: LevelWarning, Track: j.track.String()})
		return false
	}

	req := ffmpeg.Request{Audio: audioPath, Image: cover, Output: j.dest, Format: opts.Format}
	maxAttempts := 1 + max(opts.Retries, 0)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		err = m.withToolTimeout(ctx, opts, func(ctx context.Context) error {
			return m.muxer.Mux(ctx, req)
		})
		if err == nil && ioutils.FileExists(j.dest) {
			return true
		}
		_ = os.Remove(j.dest)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cover art attempt %d failed: %v", attempt, err), Level: LevelVerbose, Track: j.track.String()})
	}

	m.progress(ProgressEvent{Message: "Could not embed cover art, keeping plain file", Level: LevelWarning, Track: j.track.String()})
	return false
}

func (m *Manager) withToolTimeout(ctx context.Context, opts Options, fn func(context.Context) error) error {
	if opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ToolTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// findOutput locates the file yt-dlp wrote for base. The expected
// extension is tried first, then any "<base>.<ext>" sibling.
func findOutput(base string, format model.Format) (string, bool) {
	expected := base + format.Extension()
	if ioutils.FileExists(expected) {
		return expected, true
	}

	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		return "", false
	}
	prefix := filepath.Base(base) + "."
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, prefix) && !strings.HasSuffix(name, ".part") {
			return filepath.Join(filepath.Dir(base), name), true
		}
	}
	return "", false
}
