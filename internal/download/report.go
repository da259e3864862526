package download

import (
	"fmt"
	"strings"
	"time"

	"github.com/handiism/music-downloader/internal/model"
)

// Outcome is the terminal state of one acquisition job.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeExtractionFailed
	OutcomeFilesystemError
	OutcomeCancelled
)

// String returns the human-readable failure reason.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeExtractionFailed:
		return "extraction failed"
	case OutcomeFilesystemError:
		return "filesystem error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// JobResult is the terminal record of one track.
type JobResult struct {
	// Index is the position of the track in the requested list.
	Index int

	// Track is the descriptor the job worked on.
	Track *model.Track

	// Location is the final destination path.
	Location string

	Outcome Outcome

	// Err carries the underlying error of a failure.
	Err error

	// Skipped is set when the file already existed.
	Skipped bool

	// Attempts is the number of extraction tool invocations.
	Attempts int
}

// Succeeded reports whether the job produced (or found) its file.
func (r JobResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Reason returns the human-readable failure reason.
func (r JobResult) Reason() string {
	return r.Outcome.String()
}

// BatchReport is the aggregate outcome of one Run.
type BatchReport struct {
	// Total is the number of requested tracks.
	Total int

	// Successes and Failures are both in request order.
	Successes []JobResult
	Failures  []JobResult

	Elapsed time.Duration

	// PlaylistPath is empty when no playlist was written.
	PlaylistPath string
}

// Skipped counts successes that were already on disk.
func (r *BatchReport) Skipped() int {
	n := 0
	for _, s := range r.Successes {
		if s.Skipped {
			n++
		}
	}
	return n
}

// Summary renders the end-of-run message: counts, then one line per failure.
func (r *BatchReport) Summary() string {
	var sb strings.Builder

	if r.Total == 0 {
		return "Nothing to download"
	}

	fmt.Fprintf(&sb, "Downloaded %d/%d tracks in %s", len(r.Successes), r.Total, r.Elapsed.Round(time.Millisecond))
	if skipped := r.Skipped(); skipped > 0 {
		fmt.Fprintf(&sb, " (%d already present)", skipped)
	}

	if r.PlaylistPath != "" {
		fmt.Fprintf(&sb, "\nPlaylist: %s", r.PlaylistPath)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&sb, "\nFailed %d:", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "\n  - %s: %s", f.Track, f.Reason())
		}
	}

	return sb.String()
}
