package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromZerolog(zerolog.New(&buf).Level(zerolog.InfoLevel))

	l.Debug("hidden")
	l.Info("shown", F("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"k":"v"`)
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromZerolog(zerolog.New(&buf))

	derived := l.With(F("component", "hub"))
	derived.Info("message")

	assert.Contains(t, buf.String(), `"component":"hub"`)

	buf.Reset()
	l.Info("plain")
	assert.NotContains(t, buf.String(), "component")
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	l, err := NewWithFile("test", path, zerolog.InfoLevel)
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Close())

	// Close is idempotent.
	require.NoError(t, l.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
