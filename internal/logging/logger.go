// Package logging provides structured slog-based logging for the relay.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/hookrelay-systems/hookrelay/internal/middleware"
)

// Logger wraps slog.Logger with request-id aware context logging.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given level and format ("json" or "text",
// default json).
func New(level slog.Level, format string) *Logger {
	return &Logger{Logger: slog.New(newHandler(level, format))}
}

func newHandler(level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelError,
	}
	if format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

// Default returns a Logger around slog.Default.
func Default() *Logger {
	return &Logger{Logger: slog.Default()}
}

// WithContext returns a logger carrying the request ID from ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if id := middleware.GetRequestID(ctx); id != "" {
		return l.Logger.With(slog.String("request_id", id))
	}
	return l.Logger
}

func (l *Logger) logCtx(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.WithContext(ctx).Log(ctx, level, msg, args...)
}

// DebugContext, InfoContext, WarnContext and ErrorContext log with the
// request ID attached when the context carries one.

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelDebug, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelWarn, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logCtx(ctx, slog.LevelError, msg, args...)
}

// With returns a new logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error",
// any case) to a slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault installs l as the process default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
