package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	ctx := context.Background()

	for _, format := range []string{"json", "text"} {
		t.Run(format, func(t *testing.T) {
			l := New("warn", format)
			assert.False(t, l.Enabled(ctx, slog.LevelInfo))
			assert.True(t, l.Enabled(ctx, slog.LevelWarn))
			assert.True(t, l.Enabled(ctx, slog.LevelError))
		})
	}
}
