package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Options{Level: slog.LevelInfo, Writer: &buf, NoColor: true})

	l.Debug("hidden")
	l.Info("tool call", "tool", "get_balance")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "tool call")
	assert.Contains(t, out, "tool=get_balance")
}
