// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Text output goes through charmbracelet/log, JSON through slog's JSON handler.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Init configures the default slog logger based on environment variables.
// LOG_LEVEL: debug, info, warn, error (default: warn)
// LOG_FORMAT: text, json (default: text)
// Logs go to stderr so they never mix with command output.
func Init() {
	slog.SetDefault(New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr))
}

// New builds a logger writing to w
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)

	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(lvl),
		ReportTimestamp: true,
		Prefix:          "blog",
	})
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
