package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"rsvp-reader/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		fallback slog.Level
		expected slog.Level
	}{
		{name: "unset uses fallback", logLevel: "", fallback: slog.LevelInfo, expected: slog.LevelInfo},
		{name: "unset uses cli fallback", logLevel: "", fallback: slog.LevelWarn, expected: slog.LevelWarn},
		{name: "debug", logLevel: "debug", fallback: slog.LevelWarn, expected: slog.LevelDebug},
		{name: "upper case and spaces", logLevel: " DEBUG ", fallback: slog.LevelInfo, expected: slog.LevelDebug},
		{name: "explicit info beats warn fallback", logLevel: "info", fallback: slog.LevelWarn, expected: slog.LevelInfo},
		{name: "warning alias", logLevel: "warning", fallback: slog.LevelInfo, expected: slog.LevelWarn},
		{name: "error", logLevel: "error", fallback: slog.LevelInfo, expected: slog.LevelError},
		{name: "invalid uses fallback", logLevel: "loud", fallback: slog.LevelWarn, expected: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)

			assert.Equal(t, tt.expected, LevelFromEnv(tt.fallback))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLogger()

	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewTextLogger_DefaultsToWarn(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer

	logger := NewTextLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", slog.String("source", "book.epub"))

	output := buf.String()
	assert.NotContains(t, output, "dropped")
	assert.Contains(t, output, "kept")
	assert.Contains(t, output, "source=book.epub")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := requestid.WithRequestID(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	logger := WithRequestID(ctx, baseLogger)
	logger.Info("test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "output should be valid JSON")
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", logEntry["request_id"])
}

func TestWithRequestID_EmptyRequestID(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger := WithRequestID(context.Background(), baseLogger)
	logger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.NotContains(t, output, "request_id", "should not contain request_id field")
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		isDefault bool
	}{
		{
			name:      "with logger in context",
			ctx:       WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))),
			isDefault: false,
		},
		{
			name:      "without logger in context",
			ctx:       context.Background(),
			isDefault: true,
		},
		{
			name:      "with invalid value in context",
			ctx:       context.WithValue(context.Background(), ctxKey{}, "not a logger"),
			isDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := FromContext(tt.ctx)

			require.NotNil(t, logger)
			if tt.isDefault {
				assert.Equal(t, slog.Default(), logger)
			} else {
				assert.NotEqual(t, slog.Default(), logger)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("test message")

	assert.Contains(t, buf.String(), "test message", "should use the same logger")
}
