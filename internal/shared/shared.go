// Package shared defines helpers used by every command.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, Prefix: "music-dl"}
	return log.NewWithOptions(w, opts)
}

// DiscardLogger returns a logger that drops everything. Used by the TUI,
// which renders progress itself, and by tests.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// SetVerbose switches l to debug level when verbose is set.
func SetVerbose(l *log.Logger, verbose bool) {
	if verbose {
		l.SetLevel(log.DebugLevel)
		return
	}
	l.SetLevel(log.InfoLevel)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
