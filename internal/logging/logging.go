// Package logging wraps log/slog with the three operations the build
// pipeline reports through: sections, plain reports, and timed actions.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger is the run logger. The zero value is not usable; use New or Wrap.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to w. level is one of debug, info, warn,
// error (default info); format is "json" or "text" (default).
func New(w io.Writer, level, format string) *Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Wrap adapts an existing slog.Logger.
func Wrap(l *slog.Logger) *Logger {
	return &Logger{Logger: l}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Section announces the start of a phase.
func (l *Logger) Section(msg string, args ...any) {
	l.Info(msg, append([]any{"section", true}, args...)...)
}

// Report logs a detail line inside the current phase.
func (l *Logger) Report(msg string, args ...any) {
	l.Debug(msg, args...)
}

// Timed runs fn and logs how long it took, whether or not it failed.
func Timed[T any](l *Logger, label string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		l.Warn(label+" failed", "elapsed", elapsed, "error", err)
		return v, err
	}
	l.Info(label, "elapsed", elapsed)
	return v, nil
}
