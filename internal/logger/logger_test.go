package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger checks that named, scoped loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "session")
	ctx = WithKV(ctx, "episode", "42")

	InfoKV(ctx, "Arrest started", "phase", "active")

	out := buf.String()
	require.Contains(t, out, "session")
	require.Contains(t, out, "Arrest started")
	require.Contains(t, out, "episode")
	require.Contains(t, out, "active")
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestRedirectToFile_CreatesFile ensures the file sink is created on demand.
//
//nolint:paralleltest // Swaps the global logger.
func TestRedirectToFile_CreatesFile(t *testing.T) {
	previous := Logger()
	t.Cleanup(func() { SetLogger(previous) })

	path := filepath.Join(t.TempDir(), "logs", "eresus.log")

	closeFn, err := RedirectToFile(path)
	require.NoError(t, err)

	Info(context.Background(), "hello")
	require.NoError(t, closeFn())
	require.Same(t, previous, Logger())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "hello")
}
