// Package ffmpeg attaches cover art to finished audio files with the
// ffmpeg command line tool.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/handiism/music-downloader/internal/model"
)

// DefaultExecutable is looked up on PATH when no executable is configured.
const DefaultExecutable = "ffmpeg"

var (
	// ErrNotInstalled is returned by Check when the ffmpeg binary cannot be found.
	ErrNotInstalled = errors.New("ffmpeg is not installed")

	// ErrMux wraps every failed invocation.
	ErrMux = errors.New("ffmpeg invocation failed")
)

// Request describes one mux: Audio and Image are inputs, Output is written
// (and overwritten) by ffmpeg.
type Request struct {
	Audio  string
	Image  string
	Output string
	Format model.Format
}

// Muxer runs ffmpeg.
type Muxer struct {
	executable string
}

// New creates a Muxer. An empty executable means DefaultExecutable.
func New(executable string) *Muxer {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Muxer{executable: executable}
}

// Check verifies that the ffmpeg binary can be executed.
func (m *Muxer) Check() error {
	if _, err := exec.LookPath(m.executable); err != nil {
		return fmt.Errorf("%w: %w", ErrNotInstalled, err)
	}
	return nil
}

// Mux copies the audio stream of req.Audio and attaches req.Image as the
// front cover, writing req.Output.
func (m *Muxer) Mux(ctx context.Context, req Request) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.executable, Args(req)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %w: %s", ErrMux, err, msg)
		}
		return fmt.Errorf("%w: %w", ErrMux, err)
	}
	return nil
}

// Args builds the ffmpeg argument list for req.
func Args(req Request) []string {
	args := []string{
		"-loglevel", "error",
		"-hide_banner",
		"-y",
		"-i", req.Audio,
		"-i", req.Image,
		"-map", "0:a",
		"-map", "1:0",
		"-c", "copy",
		"-disposition:v", "attached_pic",
		"-metadata:s:v", "title=Album cover",
		"-metadata:s:v", "comment=Cover (front)",
	}
	if req.Format == model.FormatMP3 {
		args = append(args, "-id3v2_version", "3")
	}
	return append(args, req.Output)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
