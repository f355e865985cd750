// Package logger provides structured logging setup for irclogd.
// It uses Go's slog package with configurable level and output format.
package logger

import (
	"log"
	"log/slog"
	"os"
)

// New creates a slog Logger with the specified level and format ("json" or
// "text") and installs it as the process default.
func New(levelStr, format string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// StdLogger bridges a slog Logger into the log.Logger shape expected by the
// IRC client's debug output. Records are emitted at the given level.
func StdLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}
