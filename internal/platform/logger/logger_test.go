package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/internal/platform/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, config.LoggerConfig{Level: "warn", Format: "json"}))

	log.Info("dropped")
	log.Warn("attachment missing", "file", "notes.txt")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "attachment missing", line["msg"])
	assert.Equal(t, "notes.txt", line["file"])
}

func TestNewHandler_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, config.LoggerConfig{Level: "debug"}))

	log.Error("storage failure", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "storage failure")
	assert.Contains(t, out, "disk full")
	// not a terminal, so no ANSI colour codes
	assert.NotContains(t, out, "\x1b[")
}

func TestNew_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	log, closer, err := New(config.LoggerConfig{OutputPath: path, Format: "json"})
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
