package internal

import (
	"log/slog"
	"os"
	"strings"
)

// LoggerFromLevel builds the process-wide structured logger. Unknown
// levels fall back to info.
func LoggerFromLevel(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
