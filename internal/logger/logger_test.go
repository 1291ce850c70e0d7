package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := Setup(Options{Writer: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(Options{}) })

	log.Info("lookup finished", "query", "ap", "results", 3)
	Sync()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "lookup finished", entry[MessageKey])
	assert.Equal(t, "ap", entry["query"])
	assert.Contains(t, entry, TimeStampKey)
}

func TestSetupLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := Setup(Options{Writer: &buf, Level: 0})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(Options{}) })

	log.V(1).Info("hidden")
	Sync()
	assert.Empty(t, buf.String())
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tagcalc.log")
	log, err := Setup(Options{File: path})
	require.NoError(t, err)

	log.Info("to file")
	Sync()
	_, _ = Setup(Options{})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestDisabledIsNoop(t *testing.T) {
	log, err := Setup(Options{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { log.Info("dropped") })
	assert.Same(t, log, Global())
}

func TestContextPropagation(t *testing.T) {
	var buf bytes.Buffer
	log, err := Setup(Options{Writer: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(Options{}) })

	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.Same(t, ctx, WithLogger(ctx, log))
	assert.Same(t, log, FromContext(context.Background()), "falls back to the global logger")
}
