package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_toLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: "DEBUG", expected: slog.LevelDebug},
		{level: "info", expected: slog.LevelInfo},
		{level: "warn", expected: slog.LevelWarn},
		{level: "error", expected: slog.LevelError},
		{level: "", expected: slog.LevelInfo},
		{level: "unknown", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, toLevel(tc.level))
		})
	}
}

func Test_NewLoggerTo_AddsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info")
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	// when
	logger.DebugContext(ctx, "dropped")
	logger.InfoContext(ctx, "kept", "component", "test")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "test", record["component"])
}

func Test_NewLoggerTo_WithoutRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info").With("component", "store")

	// when
	logger.Info("no request")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "request_id")
	assert.Equal(t, "store", record["component"])
}
