// Package logging resolves the logger used by clients and servers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Resolve returns logger when set. Otherwise it creates a text logger on
// stderr at level, or returns slog.Default() when level is nil too.
func Resolve(logger *slog.Logger, level *slog.Level) *slog.Logger {
	if logger != nil {
		return logger
	}
	if level == nil {
		return slog.Default()
	}
	return New(os.Stderr, *level)
}

// New creates a text logger writing to w at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// slog.Level. Unknown names yield Info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
