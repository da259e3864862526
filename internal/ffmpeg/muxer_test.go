package ffmpeg

import (
	"errors"
	"slices"
	"testing"

	"github.com/handiism/music-downloader/internal/model"
)

func TestArgs(t *testing.T) {
	req := Request{Audio: "in.mp3", Image: "cover.jpg", Output: "out.mp3", Format: model.FormatMP3}
	args := Args(req)

	if args[len(args)-1] != "out.mp3" {
		t.Errorf("output should be the last argument, got %q", args[len(args)-1])
	}
	for _, want := range []string{"in.mp3", "cover.jpg", "attached_pic", "-id3v2_version"} {
		if !slices.Contains(args, want) {
			t.Errorf("Args() missing %q: %v", want, args)
		}
	}
	if i := slices.Index(args, "-c"); i < 0 || args[i+1] != "copy" {
		t.Errorf("Args() should copy streams: %v", args)
	}
}

func TestArgs_NonMP3(t *testing.T) {
	args := Args(Request{Audio: "a.flac", Image: "c.jpg", Output: "o.flac", Format: model.FormatFLAC})
	if slices.Contains(args, "-id3v2_version") {
		t.Error("id3v2 version only applies to mp3")
	}
}

func TestMuxer_CheckMissingBinary(t *testing.T) {
	m := New("/nonexistent/bin/ffmpeg")
	if err := m.Check(); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Check() error = %v, want ErrNotInstalled", err)
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("first\nsecond\n\n"); got != "second" {
		t.Errorf("lastLine() = %q", got)
	}
}
