package logx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"panic", zerolog.PanicLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in, zerolog.InfoLevel))
		})
	}
}

func TestComponentLoggerWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := newWithConsole(Config{Level: "debug", NoColor: true}, &buf)
	require.NoError(t, err)

	c := l.Component("bridge")
	c.Debug().Str("title", "Alice").Msg("forwarded")

	out := buf.String()
	assert.Contains(t, out, "forwarded")
	assert.Contains(t, out, "component=bridge")
	assert.Contains(t, out, "title=Alice")
}

func TestFileSinkIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lounge.log")
	var console bytes.Buffer
	l, err := newWithConsole(Config{Level: "info", File: path, NoColor: true}, &console)
	require.NoError(t, err)

	l.Info().Str("k", "v").Msg("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestWailsAdapterLevels(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.InfoLevel)
	w := Wails{L: zl}

	w.Debug("hidden")
	w.Warning("shown")
	w.Fatal("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"fatal":true`)
}
