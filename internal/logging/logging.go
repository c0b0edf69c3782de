// Package logging sets up the process-wide slog handler and maps the CLI's
// repeated -v flag onto a log level.
package logging

import (
	"log/slog"
	"os"
)

// LevelFromVerbosity maps a repeated -v flag count onto a slog level: 0
// verbosity flags means warn-and-above, matching the overlay's default of
// only surfacing problems, not routine progress.
func LevelFromVerbosity(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelWarn
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// ParseLevel maps a named level string onto a slog level, defaulting to
// info for an unrecognized or empty name.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a text handler at level as the process-wide default
// logger and returns it.
func Setup(level slog.Level, quiet bool) *slog.Logger {
	if quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
