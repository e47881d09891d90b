package logging

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const service = "financas"

// New creates a slog.Logger writing to w and makes it the default logger.
// format "json" selects the JSON handler; anything else the text handler.
func New(w io.Writer, level, format string) *slog.Logger {
	handler := newHandler(w, ParseLevel(level, slog.LevelInfo), format)
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name or number to a slog.Level.
func ParseLevel(value string, fallback slog.Level) slog.Level {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if i, err := strconv.Atoi(value); err == nil {
			return slog.Level(i)
		}
		return fallback
	}
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}
