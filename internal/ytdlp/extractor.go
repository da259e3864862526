// Package ytdlp drives the yt-dlp command line tool to locate, download and
// transcode the audio of a single track.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/handiism/music-downloader/internal/model"
)

// DefaultExecutable is looked up on PATH when no executable is configured.
const DefaultExecutable = "yt-dlp"

var (
	// ErrNotInstalled is returned by Check when the yt-dlp binary cannot be found.
	ErrNotInstalled = errors.New("yt-dlp is not installed")

	// ErrExtraction wraps every failed invocation.
	ErrExtraction = errors.New("yt-dlp invocation failed")
)

// Request describes one extraction.
type Request struct {
	// Query is a search expression ("ytsearch:...") or a direct URL.
	Query string

	// OutputTemplate is the yt-dlp output template, e.g. "/tmp/abc-0.%(ext)s".
	OutputTemplate string

	// Format is the target audio format passed to --audio-format.
	Format model.Format

	// Quality is passed to --audio-quality.
	Quality model.Quality

	// Tags are written by the ffmpeg post processor while transcoding.
	Tags []model.Tag

	// ForceCodec, when set, pins the ffmpeg audio encoder.
	ForceCodec string

	// RawOptions are extra yt-dlp arguments placed after every default,
	// so they take precedence.
	RawOptions []string
}

// Config configures an Extractor.
type Config struct {
	// Executable is the yt-dlp binary. Defaults to DefaultExecutable.
	Executable string

	// FFmpegLocation is forwarded to --ffmpeg-location when set.
	FFmpegLocation string
}

// Extractor runs yt-dlp through go-ytdlp.
type Extractor struct {
	executable     string
	ffmpegLocation string
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	if cfg.Executable == "" {
		cfg.Executable = DefaultExecutable
	}
	return &Extractor{
		executable:     cfg.Executable,
		ffmpegLocation: cfg.FFmpegLocation,
	}
}

// Check verifies that the yt-dlp binary can be executed.
func (e *Extractor) Check() error {
	if _, err := exec.LookPath(e.executable); err != nil {
		return fmt.Errorf("%w: %w", ErrNotInstalled, err)
	}
	return nil
}

// Extract performs a single yt-dlp invocation. It does not retry.
func (e *Extractor) Extract(ctx context.Context, req Request) error {
	args := append(append([]string{}, req.RawOptions...), req.Query)

	if _, err := e.command(req).Run(ctx, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}

func (e *Extractor) command(req Request) *ytdlp.Command {
	cmd := ytdlp.New().
		SetExecutable(e.executable).
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(string(req.Format)).
		AudioQuality(string(req.Quality)).
		NoPlaylist().
		NoOverwrites().
		IgnoreErrors().
		Quiet().
		NoProgress().
		Output(req.OutputTemplate)

	if ppa := PostProcessorArgs(req); ppa != "" {
		cmd = cmd.PostProcessorArgs(ppa)
	}
	if e.ffmpegLocation != "" {
		cmd = cmd.FFmpegLocation(e.ffmpegLocation)
	}
	return cmd
}

// PostProcessorArgs renders the --postprocessor-args value that injects
// tags (and the forced codec) into the ExtractAudio ffmpeg step.
func PostProcessorArgs(req Request) string {
	var parts []string
	if req.ForceCodec != "" {
		parts = append(parts, "-codec:a", ShellQuote(req.ForceCodec))
	}
	for _, tag := range req.Tags {
		parts = append(parts, "-metadata", ShellQuote(tag.Key+"="+tag.Value))
	}
	if len(parts) == 0 {
		return ""
	}
	return "ExtractAudio+ffmpeg_o:" + strings.Join(parts, " ")
}

// ShellQuote quotes s for the POSIX-like splitting yt-dlp applies to
// post processor arguments.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
