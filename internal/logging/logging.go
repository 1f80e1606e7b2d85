// Package logging builds the per-run structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Verbosity controls how much a run reports.
type Verbosity string

const (
	VerbosityNone    Verbosity = "none"
	VerbosityError   Verbosity = "error"
	VerbosityMessage Verbosity = "message"
	VerbosityVerbose Verbosity = "verbose"
)

// ParseVerbosity accepts a verbosity name, case-insensitively.
func ParseVerbosity(s string) (Verbosity, error) {
	switch v := Verbosity(strings.ToLower(strings.TrimSpace(s))); v {
	case VerbosityNone, VerbosityError, VerbosityMessage, VerbosityVerbose:
		return v, nil
	case "":
		return VerbosityMessage, nil
	default:
		return "", fmt.Errorf("unknown verbosity %q (want none, error, message or verbose)", s)
	}
}

// Level maps a verbosity to the minimum slog level it lets through.
func (v Verbosity) Level() slog.Level {
	switch v {
	case VerbosityError:
		return slog.LevelError
	case VerbosityVerbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given verbosity.
// VerbosityNone discards everything.
func New(v Verbosity, w io.Writer) *slog.Logger {
	if v == VerbosityNone {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: v.Level()}))
}
