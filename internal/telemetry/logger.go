package telemetry

import (
	"io"
	"log/slog"
)

// NewLogger returns the JSON logger used by every binary. Development builds
// log at debug level.
func NewLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
