package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerWritesAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.With("request_id", "abc").WithGroup("video").Info("published", "id", "v1")

	line := buf.String()
	require.Contains(t, line, "published")
	require.Contains(t, line, "request_id")
	require.Contains(t, line, "abc")
	require.Contains(t, line, "video.id")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestPrettyHandlerFiltersLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	require.Empty(t, buf.String())

	log.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNewSelectsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, "json", "debug").Debug("hello", "k", 1)
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"k":1`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
