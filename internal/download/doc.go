// Package download provides the batch acquisition pipeline: it turns a list
// of resolved tracks into finished audio files.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Fan out one job per track to a bounded worker pool
//  2. Skip tracks whose destination file already exists
//  3. Extract and transcode the audio with yt-dlp, retrying failures
//  4. Attach cover art with ffmpeg, sharing downloads through CoverArtCache
//  5. Move the result into place and annotate MP3 tags
//  6. Write an optional playlist and purge the temp directory
//
// # Basic Usage
//
//	manager := download.NewManager(download.Deps{Logger: logger})
//	if err := manager.Preflight(opts); err != nil {
//	    return err
//	}
//	report := manager.Run(ctx, tracks, opts)
//	fmt.Println(report.Summary())
//
// Run never fails as a whole. Each track ends in a JobResult whose Outcome
// tells success apart from "extraction failed", "filesystem error" and
// cancellation.
//
// # Concurrency
//
// Options.Concurrency bounds the pool and defaults to the number of logical
// CPUs. Use 1 for deterministic ordering in tests.
//
// # Progress Tracking
//
// Every step is logged and forwarded to Deps.OnProgress:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Track   string
//	}
//
// GetProgress reports finished/total jobs for polling front ends.
//
// # Retry Logic
//
// External tool failures are retried Options.Retries times. Retries are
// immediate unless Options.RetryCooldown is set.
package download
