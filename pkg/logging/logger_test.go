package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/pseudomuto/osprey/pkg/logging"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Options{Level: slog.LevelInfo, Format: "JSON", Writer: &buf})

		logger.Debug("hidden")
		logger.Info("Applied migration", "file", "001_users", "tag", "up")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "Applied migration", entry["msg"])
		require.Equal(t, "001_users", entry["file"])
		require.Equal(t, "up", entry["tag"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Options{Level: slog.LevelDebug, Writer: &buf})

		logger.Debug("Loaded migrations", "count", 2)
		require.Contains(t, buf.String(), `msg="Loaded migrations" count=2`)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := logging.ParseLevel(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.expected, level)
		})
	}

	_, err := logging.ParseLevel("loud")
	require.EqualError(t, err, `invalid log level: "loud"`)
}
