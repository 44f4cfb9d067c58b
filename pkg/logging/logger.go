// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Options customize the slog logger construction.
type Options struct {
	Level     slog.Level
	Format    string
	AddSource bool

	// Writer defaults to os.Stderr so log lines never mix with command output.
	Writer io.Writer
}

// New returns a slog.Logger configured according to opts (text by default).
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level name (debug, info, warn, error) into a
// slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, errors.Errorf("invalid log level: %q", name)
	}

	return level, nil
}

// Setup builds a logger from a level name and format and installs it as the
// default logger.
func Setup(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	slog.SetDefault(New(Options{Level: lvl, Format: format}))
	return nil
}
