package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/music-downloader/internal/model"
)

func TestRun_Empty(t *testing.T) {
	f := newFixture(t.TempDir())

	report := f.manager.Run(context.Background(), nil, f.opts)

	if report.Total != 0 || len(report.Successes) != 0 || len(report.Failures) != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
	if report.PlaylistPath != "" {
		t.Errorf("PlaylistPath = %q, want empty", report.PlaylistPath)
	}
	if got := report.Summary(); got != "Nothing to download" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRun_PartialFailures(t *testing.T) {
	f := newFixture(t.TempDir())
	f.extractor.delay = 100 * time.Millisecond
	f.opts.Concurrency = 6
	f.opts.Retries = 2

	tracks := testTracks("one", "fail-two", "three", "four", "fail-five", "six")
	report := f.manager.Run(context.Background(), tracks, f.opts)

	if report.Total != 6 {
		t.Errorf("Total = %d, want 6", report.Total)
	}
	if len(report.Successes) != 4 {
		t.Errorf("Successes = %d, want 4", len(report.Successes))
	}
	if len(report.Failures) != 2 {
		t.Fatalf("Failures = %d, want 2", len(report.Failures))
	}

	for _, fail := range report.Failures {
		if fail.Reason() != "extraction failed" {
			t.Errorf("Reason() = %q, want extraction failed", fail.Reason())
		}
		if fail.Attempts != 3 {
			t.Errorf("Attempts = %d, want 3", fail.Attempts)
		}
		if !errors.Is(fail.Err, errToolFailed) {
			t.Errorf("Err = %v, want tool failure", fail.Err)
		}
	}

	// Failing jobs take three sequential attempts, everything else one.
	// A sequential run would need at least 10 delays.
	if limit := 6 * f.extractor.delay; report.Elapsed >= limit {
		t.Errorf("Elapsed = %s, want concurrent execution below %s", report.Elapsed, limit)
	}

	for i := 1; i < len(report.Successes); i++ {
		if report.Successes[i-1].Index > report.Successes[i].Index {
			t.Error("successes should keep queue order")
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(dir)
	tracks := testTracks("one", "two", "three")

	first := f.manager.Run(context.Background(), tracks, f.opts)
	if len(first.Successes) != 3 {
		t.Fatalf("first run successes = %d, want 3", len(first.Successes))
	}

	extractCalls := f.extractor.calls.Load()
	fetchCalls := f.fetcher.calls.Load()

	second := f.manager.Run(context.Background(), tracks, f.opts)
	if len(second.Successes) != 3 {
		t.Fatalf("second run successes = %d, want 3", len(second.Successes))
	}
	if got := f.extractor.calls.Load() - extractCalls; got != 0 {
		t.Errorf("second run made %d extractor calls, want 0", got)
	}
	if got := f.fetcher.calls.Load() - fetchCalls; got != 0 {
		t.Errorf("second run made %d artwork fetches, want 0", got)
	}
	if second.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", second.Skipped())
	}
}

func TestRun_DuplicateTracks(t *testing.T) {
	f := newFixture(t.TempDir())
	f.extractor.delay = 50 * time.Millisecond

	tracks := testTracks("one", "two")
	tracks = append(tracks, tracks[0])

	report := f.manager.Run(context.Background(), tracks, f.opts)

	if len(report.Successes) != 3 {
		t.Fatalf("Successes = %d, want 3 (failures: %+v)", len(report.Successes), report.Failures)
	}
	if got := f.extractor.calls.Load(); got != 2 {
		t.Errorf("extractor calls = %d, want 2", got)
	}
	if got := f.muxer.calls.Load(); got != 2 {
		t.Errorf("muxer calls = %d, want 2", got)
	}
	if report.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", report.Skipped())
	}

	data, err := os.ReadFile(report.Successes[0].Location)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "+cover") {
		t.Errorf("output = %q, want muxed file", data)
	}
}

func TestRun_OutputLayout(t *testing.T) {
	f := newFixture(t.TempDir())
	tracks := []*model.Track{model.NewTrack(model.TrackInput{Name: "Song", Artists: []string{"A B"}, Album: "C:D"})}

	report := f.manager.Run(context.Background(), tracks, f.opts)
	if len(report.Successes) != 1 {
		t.Fatalf("Successes = %d, want 1", len(report.Successes))
	}

	want := filepath.Join(f.opts.OutputDir, "A B", "C□D", "A B - Song.mp3")
	if got := report.Successes[0].Location; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "+cover") {
		t.Errorf("mp3 output should carry cover art, got %q", data)
	}
}

func TestRun_SharedCoverArt(t *testing.T) {
	f := newFixture(t.TempDir())
	f.fetcher.delay = 50 * time.Millisecond

	report := f.manager.Run(context.Background(), testTracks("one", "two", "three", "four"), f.opts)

	if len(report.Successes) != 4 {
		t.Fatalf("Successes = %d, want 4", len(report.Successes))
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Errorf("artwork fetched %d times, want 1", got)
	}
	if got := f.muxer.calls.Load(); got != 4 {
		t.Errorf("muxer calls = %d, want 4", got)
	}
}

func TestRun_MuxFailureDegrades(t *testing.T) {
	f := newFixture(t.TempDir())
	f.muxer.fail = true
	f.opts.Retries = 1

	report := f.manager.Run(context.Background(), testTracks("one"), f.opts)

	if len(report.Successes) != 1 {
		t.Fatalf("Successes = %d, want 1", len(report.Successes))
	}
	if got := f.muxer.calls.Load(); got != 2 {
		t.Errorf("muxer calls = %d, want 2", got)
	}

	data, err := os.ReadFile(report.Successes[0].Location)
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasSuffix(string(data), "+cover") {
		t.Error("plain file expected after mux failure")
	}
}

func TestRun_CoverArtFetchFailureDegrades(t *testing.T) {
	f := newFixture(t.TempDir())
	f.fetcher.err = errors.New("unreachable")

	report := f.manager.Run(context.Background(), testTracks("one"), f.opts)

	if len(report.Successes) != 1 {
		t.Fatalf("Successes = %d, want 1", len(report.Successes))
	}
	if got := f.muxer.calls.Load(); got != 0 {
		t.Errorf("muxer calls = %d, want 0", got)
	}
}

func TestRun_SkipsArtwork(t *testing.T) {
	tests := []struct {
		name   string
		format model.Format
		skip   bool
	}{
		{"opted out", model.FormatMP3, true},
		{"opus container", model.FormatOpus, false},
		{"wav container", model.FormatWAV, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t.TempDir())
			f.opts.Format = tt.format
			f.opts.SkipCoverArt = tt.skip

			report := f.manager.Run(context.Background(), testTracks("one"), f.opts)

			if len(report.Successes) != 1 {
				t.Fatalf("Successes = %d, want 1", len(report.Successes))
			}
			if f.fetcher.calls.Load() != 0 || f.muxer.calls.Load() != 0 {
				t.Error("artwork should not be fetched or muxed")
			}
			if !strings.HasSuffix(report.Successes[0].Location, tt.format.Extension()) {
				t.Errorf("Location = %q, want %s extension", report.Successes[0].Location, tt.format.Extension())
			}
		})
	}
}

func TestRun_Playlist(t *testing.T) {
	f := newFixture(t.TempDir())
	f.opts.CreatePlaylist = true

	tracks := testTracks("one", "fail-two", "three", "four")
	for _, track := range tracks {
		track.Playlist = "Road Trip"
	}

	report := f.manager.Run(context.Background(), tracks, f.opts)

	wantPath := filepath.Join(f.opts.OutputDir, "Road Trip.m3u")
	if report.PlaylistPath != wantPath {
		t.Fatalf("PlaylistPath = %q, want %q", report.PlaylistPath, wantPath)
	}

	data, err := os.ReadFile(report.PlaylistPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "#EXTM3U" || lines[1] != "#PLAYLIST:Road Trip" {
		t.Errorf("unexpected header: %q", lines[:2])
	}

	var paths []string
	for _, line := range lines[2:] {
		if !strings.HasPrefix(line, "#") {
			paths = append(paths, line)
		}
	}
	if len(paths) != 3 {
		t.Fatalf("got %d path lines, want 3", len(paths))
	}
	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(filepath.Dir(report.PlaylistPath), filepath.FromSlash(p))); err != nil {
			t.Errorf("playlist entry %q does not resolve: %v", p, err)
		}
	}
	if !strings.Contains(paths[0], "one") || !strings.Contains(paths[2], "four") {
		t.Errorf("entries should follow queue order: %v", paths)
	}
}

func TestRun_NoPlaylistWithoutSuccess(t *testing.T) {
	f := newFixture(t.TempDir())
	f.opts.CreatePlaylist = true
	f.opts.Retries = 0

	report := f.manager.Run(context.Background(), testTracks("fail-one"), f.opts)

	if report.PlaylistPath != "" {
		t.Errorf("PlaylistPath = %q, want empty", report.PlaylistPath)
	}
}

func TestRun_PurgesTempDir(t *testing.T) {
	f := newFixture(t.TempDir())
	f.opts.Retries = 0

	f.manager.Run(context.Background(), testTracks("one", "fail-two"), f.opts)

	entries, err := os.ReadDir(f.opts.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir has %d entries after run, want 0", len(entries))
	}
}

func TestRun_FilesystemError(t *testing.T) {
	f := newFixture(t.TempDir())
	f.opts.Group = "%artist%"

	// A regular file where the artist folder should go.
	if err := os.MkdirAll(f.opts.OutputDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.opts.OutputDir, "Artist"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	report := f.manager.Run(context.Background(), testTracks("one"), f.opts)

	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(report.Failures))
	}
	if got := report.Failures[0].Reason(); got != "filesystem error" {
		t.Errorf("Reason() = %q, want filesystem error", got)
	}
	if got := report.Failures[0].Attempts; got != 1 {
		t.Errorf("Attempts = %d, filesystem errors must not trigger extraction retries", got)
	}
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.manager.Run(ctx, testTracks("one", "two"), f.opts)

	if len(report.Failures) != 2 {
		t.Fatalf("Failures = %d, want 2", len(report.Failures))
	}
	for _, fail := range report.Failures {
		if fail.Outcome != OutcomeCancelled {
			t.Errorf("Outcome = %v, want cancelled", fail.Outcome)
		}
	}
	if f.extractor.calls.Load() != 0 {
		t.Error("no tool should run after cancellation")
	}
}

func TestRun_ExtractionRequest(t *testing.T) {
	f := newFixture(t.TempDir())
	f.opts.RawOptions = []string{"--cookies", "c.txt"}

	f.manager.Run(context.Background(), testTracks("one"), f.opts)

	if len(f.extractor.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(f.extractor.requests))
	}
	req := f.extractor.requests[0]

	if req.Query != "ytsearch:Artist - one audio" {
		t.Errorf("Query = %q", req.Query)
	}
	if req.ForceCodec != "libmp3lame" {
		t.Errorf("ForceCodec = %q, want libmp3lame", req.ForceCodec)
	}
	if !strings.HasSuffix(req.OutputTemplate, ".%(ext)s") || !strings.HasPrefix(req.OutputTemplate, f.opts.TempDir) {
		t.Errorf("OutputTemplate = %q", req.OutputTemplate)
	}
	if len(req.RawOptions) != 2 {
		t.Errorf("RawOptions = %v", req.RawOptions)
	}

	tags := map[string]string{}
	for _, tag := range req.Tags {
		tags[tag.Key] = tag.Value
	}
	if tags["track"] != "1/1" || tags["artist"] != "Artist" {
		t.Errorf("Tags = %v", tags)
	}

	if len(f.tagger.paths) != 1 {
		t.Errorf("tagger calls = %d, want 1", len(f.tagger.paths))
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(dir)

	var mu sync.Mutex
	var events []ProgressEvent
	f.manager.onProgress = func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	f.manager.Run(context.Background(), testTracks("one", "two"), f.opts)

	done, total := f.manager.GetProgress()
	if done != 2 || total != 2 {
		t.Errorf("GetProgress() = %d/%d, want 2/2", done, total)
	}

	var successes int
	for _, e := range events {
		if e.Level == LevelSuccess && strings.HasPrefix(e.Message, "Downloaded: ") {
			successes++
		}
	}
	if successes != 2 {
		t.Errorf("got %d success events, want 2", successes)
	}
}

func TestPreflight(t *testing.T) {
	f := newFixture(t.TempDir())

	if err := f.manager.Preflight(f.opts); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}

	f.muxer.checkErr = errors.New("no ffmpeg")
	if err := f.manager.Preflight(f.opts); !errors.Is(err, ErrToolMissing) {
		t.Errorf("Preflight() error = %v, want ErrToolMissing", err)
	}

	opts := f.opts
	opts.SkipCoverArt = true
	if err := f.manager.Preflight(opts); err != nil {
		t.Errorf("Preflight() without cover art should not need ffmpeg: %v", err)
	}

	f.extractor.checkErr = errors.New("no yt-dlp")
	if err := f.manager.Preflight(opts); !errors.Is(err, ErrToolMissing) {
		t.Errorf("Preflight() error = %v, want ErrToolMissing", err)
	}
}

func TestPlaylistTitle(t *testing.T) {
	tests := []struct {
		name  string
		input model.TrackInput
		want  string
	}{
		{"hint", model.TrackInput{Name: "N", Album: "Al", Playlist: "P"}, "P"},
		{"album", model.TrackInput{Name: "N", Album: "Al"}, "Al"},
		{"defaults", model.TrackInput{}, model.UnknownAlbum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaylistTitle(model.NewTrack(tt.input)); got != tt.want {
				t.Errorf("PlaylistTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindOutput(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "id-1")

	if _, ok := findOutput(base, model.FormatMP3); ok {
		t.Error("findOutput() should fail on an empty dir")
	}

	other := filepath.Join(dir, "id-10.mp3")
	os.WriteFile(other, nil, 0644)
	if _, ok := findOutput(base, model.FormatMP3); ok {
		t.Error("findOutput() must not match a longer index")
	}

	got := filepath.Join(dir, "id-1.m4a")
	os.WriteFile(got, nil, 0644)
	if path, ok := findOutput(base, model.FormatAAC); !ok || path != got {
		t.Errorf("findOutput() = %q, %v", path, ok)
	}
}
