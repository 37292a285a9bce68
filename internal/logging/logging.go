// Package logging builds the charmbracelet logger used across qrstudio and
// carries it through contexts.
package logging

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type ctxKey struct{}

var loggerKey = ctxKey{}

// New creates a timestamped logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "[QR]",
	})
}

// Parse builds a logger from a level name (debug, info, warn, error).
// Unknown names fall back to info.
func Parse(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return New(w, lvl)
}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger in ctx, or log.Default() when none is set.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
