package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"Warn", slog.LevelWarn},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNew_Formats(t *testing.T) {
	assert.NotNil(t, New(slog.LevelInfo, "json"))
	assert.NotNil(t, New(slog.LevelDebug, "text"))
	assert.NotNil(t, New(slog.LevelInfo, ""))
}

func TestWithContext_NoRequestID(t *testing.T) {
	l := New(slog.LevelInfo, "json")
	assert.Same(t, l.Logger, l.WithContext(t.Context()))
}
