// Package logging builds the slog loggers used by both binaries and carries
// a request-scoped logger through context.
//
// The fetch service logs JSON to stdout. The terminal reader logs text to
// stderr, quieter by default, so log lines never land in the word stream.
// Both honour LOG_LEVEL (debug, info, warn, error).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"rsvp-reader/internal/handler/http/requestid"
)

// LevelFromEnv parses LOG_LEVEL, returning fallback when it is unset or
// unrecognised.
func LevelFromEnv(fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// NewLogger returns the service logger: JSON on stdout at info by default.
// Source locations are added when warnings are enabled.
func NewLogger() *slog.Logger {
	level := LevelFromEnv(slog.LevelInfo)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}))
}

// NewTextLogger returns the CLI logger: text on w at warn by default.
func NewTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelFromEnv(slog.LevelWarn),
	}))
}

// WithRequestID adds the request_id attribute when ctx carries one.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := requestid.FromContext(ctx); reqID != "" {
		return logger.With(slog.String("request_id", reqID))
	}
	return logger
}

type ctxKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
