package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.PhotoPath)
	assert.NotEmpty(t, cfg.ExportPath)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/measurements.db")
	t.Setenv("PHOTO_PATH", "/custom/photos")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/measurements.db", cfg.DBPath)
	assert.Equal(t, "/custom/photos", cfg.PhotoPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}
