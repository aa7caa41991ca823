// Package docker implements a real external Provider against the local
// Docker daemon: networks and volumes. Containers and images are out of
// scope here (trimmed from the teacher's provider, which also manages
// those), since the module's worked examples only need a provider whose
// Create/Read/Delete genuinely cross a process boundary.
package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	validator "github.com/go-playground/validator/v10"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/provider"
	"github.com/drft-io/drft/internal/resource"
)

// Network is a docker network, managed by name.
type Network struct {
	resource.Base `drft:"-"`
	Name          string `drft:"name"`
	Driver        string `drft:"driver,omitempty"`
	Internal      bool   `drft:"internal,omitempty"`
}

// NetworkState records the daemon-assigned id alongside the resolved
// driver (may differ from a desired Driver of "" once created).
type NetworkState struct {
	resource.BaseState `drft:"-"`
	ID                 string `drft:"id"`
	Driver             string `drft:"driver"`
}

// Volume is a docker volume, managed by name.
type Volume struct {
	resource.Base `drft:"-"`
	Name          string `drft:"name"`
	Driver        string `drft:"driver,omitempty"`
}

// VolumeState mirrors what the daemon reports back after creation.
type VolumeState struct {
	resource.BaseState `drft:"-"`
	Name               string `drft:"name"`
	Driver             string `drft:"driver"`
}

// Config is the provider-level configuration accepted by Configure,
// structurally validated before a client is built from it.
type Config struct {
	Host string `validate:"omitempty,url"`
}

// Provider drives the local (or configured) Docker daemon for Network and
// Volume resources.
type Provider struct {
	provider.Base
	client   *client.Client
	validate *validator.Validate
}

// New returns a Provider with no client yet; Configure or the first
// Initialize call establishes one.
func New() *Provider {
	p := &Provider{validate: validator.New()}
	p.Handles(&Network{})
	p.Handles(&Volume{})
	return p
}

func (p *Provider) Name() string    { return "docker" }
func (p *Provider) Version() string { return "1.0" }

// Configure validates cfg against Config's tags and, if valid, builds the
// daemon client. An empty or missing "host" key falls back to the
// standard DOCKER_HOST environment convention.
func (p *Provider) Configure(cfg map[string]any) error {
	var c Config
	if host, ok := cfg["host"].(string); ok {
		c.Host = host
	}
	if err := p.validate.Struct(&c); err != nil {
		return fmt.Errorf("docker: invalid configuration: %w", err)
	}

	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if c.Host != "" {
		opts = append(opts, client.WithHost(c.Host))
	} else {
		opts = append(opts, client.FromEnv)
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return fmt.Errorf("docker: create client: %w", err)
	}
	p.client = cli
	return nil
}

// Initialize configures the provider from the environment if no explicit
// Configure call has run yet; once a client exists it does nothing.
// Stack.Refresh calls it before reading. The executor does not call it,
// and Create, Read, Update and Delete use the client without checking it,
// so they dereference a nil client unless Configure or Initialize has run.
func (p *Provider) Initialize(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	return p.Configure(nil)
}

func (p *Provider) Dispose(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *Provider) Create(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	switch v := r.(type) {
	case *Network:
		resp, err := p.client.NetworkCreate(ctx, v.Name, types.NetworkCreate{
			Driver:   v.Driver,
			Internal: v.Internal,
		})
		if err != nil {
			return nil, fmt.Errorf("docker: create network %s: %w", v.Name, err)
		}
		driver := v.Driver
		if nw, err := p.client.NetworkInspect(ctx, resp.ID, network.InspectOptions{}); err == nil {
			driver = nw.Driver
		}
		return &NetworkState{BaseState: resource.NewBaseState(v), ID: resp.ID, Driver: driver}, nil

	case *Volume:
		vol, err := p.client.VolumeCreate(ctx, volume.CreateOptions{Name: v.Name, Driver: v.Driver})
		if err != nil {
			return nil, fmt.Errorf("docker: create volume %s: %w", v.Name, err)
		}
		return &VolumeState{BaseState: resource.NewBaseState(v), Name: vol.Name, Driver: vol.Driver}, nil
	}
	return nil, fmt.Errorf("docker: unsupported resource type %T", r)
}

func (p *Provider) Read(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	switch v := r.(type) {
	case *Network:
		nw, err := p.client.NetworkInspect(ctx, v.Name, network.InspectOptions{})
		if err != nil {
			if client.IsErrNotFound(err) {
				return nil, errs.ResourceNotFound(v.ResourceID())
			}
			return nil, fmt.Errorf("docker: inspect network %s: %w", v.Name, err)
		}
		return &NetworkState{BaseState: resource.NewBaseState(v), ID: nw.ID, Driver: nw.Driver}, nil

	case *Volume:
		vol, err := p.client.VolumeInspect(ctx, v.Name)
		if err != nil {
			if client.IsErrNotFound(err) {
				return nil, errs.ResourceNotFound(v.ResourceID())
			}
			return nil, fmt.Errorf("docker: inspect volume %s: %w", v.Name, err)
		}
		return &VolumeState{BaseState: resource.NewBaseState(v), Name: vol.Name, Driver: vol.Driver}, nil
	}
	return nil, fmt.Errorf("docker: unsupported resource type %T", r)
}

// Update recreates the network or volume: neither resource type supports
// an in-place attribute change in the daemon's own API.
func (p *Provider) Update(ctx context.Context, current resource.ResourceState, desired resource.Resource) (resource.ResourceState, error) {
	if err := p.Delete(ctx, current); err != nil {
		return nil, err
	}
	return p.Create(ctx, desired)
}

func (p *Provider) Delete(ctx context.Context, current resource.ResourceState) error {
	switch st := current.(type) {
	case *NetworkState:
		if err := p.client.NetworkRemove(ctx, st.ID); err != nil && !client.IsErrNotFound(err) {
			return fmt.Errorf("docker: remove network %s: %w", st.ID, err)
		}
		return nil
	case *VolumeState:
		if err := p.client.VolumeRemove(ctx, st.Name, true); err != nil && !client.IsErrNotFound(err) {
			return fmt.Errorf("docker: remove volume %s: %w", st.Name, err)
		}
		return nil
	}
	return fmt.Errorf("docker: unsupported state type %T", current)
}
