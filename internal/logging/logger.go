// Package logging configures structured slog output for slidecast.
//
// The daemon logs to a file in the configured log directory and, when
// attached to a terminal, mirrors colorized console output to stderr.
// Attr helpers and context field extraction keep log keys consistent
// across packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options controls logger construction.
type Options struct {
	// Format is "console" or "json".
	Format string
	// Level is one of debug, info, warn, error.
	Level string
	// LogDir, when set, adds a JSON log file alongside console output.
	LogDir string
	// Writer overrides the console destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds a logger from the supplied options. The returned cleanup
// function closes the log file, if one was opened.
func New(opts Options) (*slog.Logger, func(), error) {
	level := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var handlers []slog.Handler
	switch opts.Format {
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	default:
		handlers = append(handlers, tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !writerIsTerminal(out),
		}))
	}

	cleanup := func() {}
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		path := filepath.Join(opts.LogDir, "slidecast.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
		cleanup = func() { file.Close() }
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), cleanup, nil
	}
	return slog.New(newFanout(handlers...)), cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
