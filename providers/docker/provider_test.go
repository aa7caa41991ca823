package docker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/providers/docker"
)

// These tests stop short of the daemon boundary: Configure's validation
// path and CanHandle's routing are exercised directly, since Create/Read/
// Delete all require a live Docker socket this suite has no business
// assuming exists.

func TestConfigureRejectsInvalidHost(t *testing.T) {
	p := docker.New()
	err := p.Configure(map[string]any{"host": "not a url"})
	require.Error(t, err)
}

func TestConfigureAcceptsEmptyHost(t *testing.T) {
	p := docker.New()
	// No host key at all falls back to the DOCKER_HOST environment
	// convention; building the client itself doesn't dial the daemon.
	err := p.Configure(nil)
	require.NoError(t, err)
}

func TestConfigureAcceptsValidHost(t *testing.T) {
	p := docker.New()
	err := p.Configure(map[string]any{"host": "tcp://127.0.0.1:2375"})
	require.NoError(t, err)
}

func TestCanHandleNetworksAndVolumesOnly(t *testing.T) {
	p := docker.New()
	assert.True(t, p.CanHandle(&docker.Network{Base: resource.NewBase("net"), Name: "net"}))
	assert.True(t, p.CanHandle(&docker.Volume{Base: resource.NewBase("vol"), Name: "vol"}))

	type other struct {
		resource.Base `drft:"-"`
	}
	assert.False(t, p.CanHandle(&other{Base: resource.NewBase("o")}))
}

func TestNameAndVersion(t *testing.T) {
	p := docker.New()
	assert.Equal(t, "docker", p.Name())
	assert.NotEmpty(t, p.Version())
}
