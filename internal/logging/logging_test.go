package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", DiagramID(ctx))
	assert.Equal(t, "", Tool(ctx))

	ctx = WithDiagramID(ctx, "demo")
	ctx = WithTool(ctx, "nereid.render_text")

	assert.Equal(t, "demo", DiagramID(ctx))
	assert.Equal(t, "nereid.render_text", Tool(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithTool(WithDiagramID(context.Background(), "demo"), "nereid.query")
	LogWith(ctx, logger).Info("rendered")

	output := buf.String()
	assert.Contains(t, output, "diagram_id=demo")
	assert.Contains(t, output, "tool=nereid.query")
	assert.Contains(t, output, "rendered")
}

func TestLogWithMissingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogWith(WithDiagramID(context.Background(), "only"), logger).Info("partial")

	output := buf.String()
	assert.Contains(t, output, "diagram_id=only")
	assert.NotContains(t, output, "tool=")
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner).WithAttrs([]slog.Attr{slog.String("component", "viewer")}))

	logger.InfoContext(WithDiagramID(context.Background(), "d1"), "reload")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "d1", rec["diagram_id"])
	assert.Equal(t, "viewer", rec["component"])
	assert.Equal(t, "reload", rec["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = New(&buf, "nope")
	assert.Error(t, err)
}

func TestOpenFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "nereid.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	_, err = f.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
