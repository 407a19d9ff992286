// Package logging builds the slog logger used across stockroom.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ssargent/stockroom/pkg/config"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New returns a logger writing to w with the configured level and format.
// Unknown levels fall back to info and unknown formats to text.
func New(cfg config.Logging, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level, slog.LevelInfo)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "stockroom")
}

// ParseLevel converts a level name into a slog.Level
func ParseLevel(name string, fallback slog.Level) slog.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return fallback
}
