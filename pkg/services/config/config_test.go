package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, MapProviderStatic, cfg.MapProvider)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9999\"\nmap_provider: screenshot\nsettle_delay: 5s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, MapProviderScreenshot, cfg.MapProvider)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	// Untouched settings keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoad_UnknownMapProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map_provider: carrier-pigeon\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestValidateMapProvider(t *testing.T) {
	assert.NoError(t, ValidateMapProvider(MapProviderStatic))
	assert.NoError(t, ValidateMapProvider(MapProviderScreenshot))
	assert.ErrorContains(t, ValidateMapProvider("carrier-pigeon"), "carrier-pigeon")
	assert.Error(t, ValidateMapProvider(""))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
