package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/config"
)

func TestContextRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, context.Background(), ContextWithLogger(context.Background(), nil))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogConfig{Level: "info", Format: "JSON"})

	logger.Debug("hidden")
	logger.Info("session started", "session_id", "s-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session started", entry["msg"])
	assert.Equal(t, "s-1", entry["session_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogConfig{Level: "debug", Format: "text"})

	logger.Debug("visible", "event_id", "evt-1")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "event_id=evt-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestComponent(t *testing.T) {
	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))

	Component(context.Background(), baseLogger, "handler", "SessionHandler", "", "session_id", "s-1").Info("served")
	assert.Contains(t, base.String(), "handler=SessionHandler")
	assert.Contains(t, base.String(), "session_id=s-1")
	assert.NotContains(t, base.String(), "operation=")

	ctx := ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)))
	Component(ctx, baseLogger, "service", "PresetService", "SavePreset").Info("saved")
	assert.Contains(t, scoped.String(), "service=PresetService")
	assert.Contains(t, scoped.String(), "operation=SavePreset")
	assert.NotContains(t, base.String(), "saved")
}
