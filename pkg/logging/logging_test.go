package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerText(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelInfo)
	log.Info("extracted", "tiles", 176)
	out := buf.String()
	assert.Contains(t, out, "msg=extracted")
	assert.Contains(t, out, "tiles=176")
	assert.Contains(t, out, "level=INFO")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)
	log.Info("extracted", "tiles", 176)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "extracted", rec["msg"])
	assert.Equal(t, float64(176), rec["tiles"])
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)
	log.Info("quiet")
	assert.Empty(t, buf.String())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.Group("run",
		slog.String("name", "ctl"),
	))
	ctx = AppendCtx(ctx, slog.String("image", "world.png"))
	log.InfoContext(ctx, "start")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "world.png", rec["image"])
	run, ok := rec["run"].(map[string]any)
	require.True(t, ok, "expected run group in %s", buf.String())
	assert.Equal(t, "ctl", run["name"])
}

func TestAppendCtxDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))

	log.InfoContext(parent, "parent only")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "1", rec["a"])
	assert.NotContains(t, rec, "b")
}

func TestRotating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.log")
	w := Rotating(path)
	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
