package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegistry_GetCredentials(t *testing.T) {
	path := writeCredsFile(t, `
[default]
opencage_api_key = oc-from-file
mapbox_api_key   = mb-from-file

[staging]
opencage_api_key = oc-staging
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	creds, err := registry.GetCredentials(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "oc-from-file", creds.OpenCageKey)
	assert.Equal(t, "mb-from-file", creds.MapboxToken)

	staging, err := registry.GetCredentials(context.Background(), "staging")
	require.NoError(t, err)
	assert.Equal(t, "oc-staging", staging.OpenCageKey)
	assert.Empty(t, staging.MapboxToken)
}

func TestRegistry_EnvOverridesFile(t *testing.T) {
	path := writeCredsFile(t, `
[default]
opencage_api_key = oc-from-file
mapbox_api_key   = mb-from-file
`)
	t.Setenv("OPENCAGE_API_KEY", "oc-from-env")

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	creds, err := registry.GetCredentials(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "oc-from-env", creds.OpenCageKey)
	assert.Equal(t, "mb-from-file", creds.MapboxToken)
}

func TestRegistry_GetProfiles(t *testing.T) {
	path := writeCredsFile(t, `
[default]
opencage_api_key = a

[staging]
opencage_api_key = b
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := registry.GetProfiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "staging"}, profiles)
}

func TestEnvRegistry(t *testing.T) {
	t.Setenv("OPENCAGE_API_KEY", "oc-env")
	t.Setenv("MAPBOX_API_KEY", "mb-env")

	creds, err := NewEnvRegistry().GetCredentials(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "oc-env", creds.OpenCageKey)
	assert.Equal(t, "mb-env", creds.MapboxToken)
}

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
