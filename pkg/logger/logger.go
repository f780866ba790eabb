package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// New builds the process logger. Format "json" writes structured records to
// stdout; anything else writes human-readable lines to stderr.
func New(level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
		}))
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmLevel(lvl),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(lvl slog.Level) charmlog.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return charmlog.DebugLevel
	case lvl >= slog.LevelError:
		return charmlog.ErrorLevel
	case lvl >= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.InfoLevel
	}
}
