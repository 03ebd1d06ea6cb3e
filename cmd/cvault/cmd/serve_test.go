package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cvault/cvault/pkg/config"
)

func TestOpenArenaBackends(t *testing.T) {
	logger := zaptest.NewLogger(t)

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "log")
	arena, err := openArena(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, arena.Close())

	cfg.Backend = "pebble"
	cfg.DataDir = filepath.Join(t.TempDir(), "pebble")
	arena, err = openArena(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, arena.Close())

	cfg.Backend = "bogus"
	_, err = openArena(cfg, logger)
	assert.Error(t, err)
}

func TestBuildLogger(t *testing.T) {
	logger, err := buildLogger("debug")
	require.NoError(t, err)
	logger.Sync()

	_, err = buildLogger("chatty")
	assert.Error(t, err)
}
