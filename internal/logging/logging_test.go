package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	id := GetOrGenerateTraceID(ctx)
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	ctx = ContextWithTraceID(ctx, id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))
	assert.NotEqual(t, id, NewTraceID())
}

func TestTraceHookAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(traceHook{})
	ctx := ContextWithTraceID(context.Background(), "trace-123")

	logger.Info().Ctx(ctx).Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "trace-123", line["trace_id"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := ComponentLogger(zerolog.New(&buf), "engine")
	ctx := base.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from ctx")
	assert.Contains(t, buf.String(), `"component":"engine"`)

	//nolint:staticcheck // Exercising the nil guard.
	assert.NotNil(t, FromContext(nil))
}

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "carbonfocus.log")
	result := NewLoggerWithPath(Config{Level: "debug", Format: FormatJSON, Output: OutputFile, File: path})
	t.Cleanup(func() { _ = result.Close() })

	require.True(t, result.UsingFile)
	assert.Equal(t, path, result.FilePath)
	assert.Equal(t, zerolog.DebugLevel, result.Logger.GetLevel())

	result.Logger.Debug().Msg("written")
	require.NoError(t, result.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestNewLoggerWithPath_Fallback(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	result := NewLoggerWithPath(Config{Output: OutputFile, File: filepath.Join(blocker, "x.log")})
	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)
	assert.Equal(t, zerolog.InfoLevel, result.Logger.GetLevel())
}
