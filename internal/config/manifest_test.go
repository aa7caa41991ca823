package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/config"
)

func TestLoadParsesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drft.yaml")
	contents := "stack: example\nproviders:\n  - memory\n  - docker\nsettings:\n  region: local\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	m, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example", m.Stack)
	assert.Equal(t, []string{"memory", "docker"}, m.Providers)
	assert.Equal(t, "local", m.Settings["region"])
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
