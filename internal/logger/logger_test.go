package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, WarnLevel)
	l.Infof("recovered %d files", 3)
	l.Warnf("skipping %s", "x")
	l.Error("failed")

	require.Equal(t, "[WARN] skipping x\n[ERROR] failed\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLevel("debug"))
	require.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	require.Equal(t, InfoLevel, ParseLevel("bogus"))

	require.Equal(t, slog.LevelDebug, DebugLevel.Slog())
	require.Equal(t, slog.LevelWarn, WarnLevel.Slog())
}
