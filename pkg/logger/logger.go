package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds a slog logger writing JSON in release mode and text otherwise
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup installs a stdout logger as the slog default
func Setup(level slog.Level, json bool) *slog.Logger {
	l := New(os.Stdout, level, json)
	slog.SetDefault(l)
	return l
}
