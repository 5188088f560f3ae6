package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "wallscan_logs",
			appName: "wallscan",
			want:    filepath.Join("wallscan_logs", "wallscan.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./wallscan_logs",
			appName: "wallscan",
			want:    filepath.Join(".", "wallscan_logs", "wallscan.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "wallscan"),
			appName: "wallsummary",
			want:    filepath.Join("/var", "log", "wallscan", "wallsummary.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{" Warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetup_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	s, err := Setup(Options{
		Level:        "info",
		LogsDir:      dir,
		Name:         "wallscan",
		SessionStart: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Console:      &console,
	})
	require.NoError(t, err)

	s.Logger.Info().Msg("Finished.")
	s.Logger.Debug().Msg("hidden")
	require.NoError(t, s.Close())

	assert.Equal(t, filepath.Join(dir, "wallscan.20260102_030405.log"), s.FilePath)
	assert.Contains(t, console.String(), "Finished.")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(s.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Finished.")
}

func TestSetup_NoLogsDir(t *testing.T) {
	var console bytes.Buffer

	s, err := Setup(Options{Level: "debug", Console: &console})
	require.NoError(t, err)

	s.Logger.Debug().Msg("shown")
	assert.Empty(t, s.FilePath)
	assert.Contains(t, console.String(), "shown")
	assert.NoError(t, s.Close())
}
