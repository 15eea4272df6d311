package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eduvoice.log")
	logger, f := setupLogging(false, path)
	require.NotNil(t, logger)
	assert.Nil(t, f)
	assert.Equal(t, io.Discard, log.Writer())

	_, err := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err), "no log directory without debug")
}

func TestSetupLogging_EnabledWithDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eduvoice.log")
	logger, f := setupLogging(true, path)
	require.NotNil(t, f)
	t.Cleanup(func() {
		f.Close()
		log.SetOutput(io.Discard)
	})

	logger.Info("test message", "component", "test")

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test message")
	assert.Contains(t, string(body), "component=test")

	assert.NotEqual(t, os.Stdout, log.Writer())
	assert.NotEqual(t, os.Stderr, log.Writer())
}

func TestSetupLogging_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eduvoice.log")

	large, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, large.Truncate(maxLogSize+1))
	require.NoError(t, large.Close())

	_, f := setupLogging(true, path)
	require.NotNil(t, f)
	t.Cleanup(func() {
		f.Close()
		log.SetOutput(io.Discard)
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	rotated := false
	for _, e := range entries {
		if e.Name() != "eduvoice.log" && strings.HasPrefix(e.Name(), "eduvoice-") && filepath.Ext(e.Name()) == ".log" {
			rotated = true
		}
	}
	assert.True(t, rotated, "expected rotated log file")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(maxLogSize))
}
