package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windowlog/internal/config"
)

func TestNewTeesIntoLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windowlog.log")

	logger, cleanup, err := New(&config.Config{LogLevel: "debug", LogFile: path})
	require.NoError(t, err)

	logger.Debug("photo normalized", "measurement_id", 1)
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "photo normalized")
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}

func TestNewWithoutLogFile(t *testing.T) {
	logger, cleanup, err := New(&config.Config{LogLevel: "info"})
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestLevelMapping(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, level("debug"))
	assert.Equal(t, slog.LevelWarn, level("warn"))
	assert.Equal(t, slog.LevelError, level("error"))
	assert.Equal(t, slog.LevelInfo, level("info"))
	assert.Equal(t, slog.LevelInfo, level("verbose"))
}
