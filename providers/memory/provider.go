// Package memory implements an in-process mock Provider: resources are
// tracked in a map rather than against any real external system. It
// exists for tests and for cmd/drft's demo stack, mirroring the role
// the teacher's "null" provider plays for its own test suite.
package memory

import (
	"context"
	"sync"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/resource"
)

// State is the ResourceState memory hands back for every resource it
// manages; it carries no outputs of its own beyond the wrapped Resource.
type State struct {
	resource.BaseState `drft:"-"`
}

// Provider is a catch-all mock: unlike a real provider it matches every
// resource, not a fixed type, the same way the teacher's null provider
// accepts any resource type thrown at it. Stacks combining memory with a
// real provider should list memory last, so CanHandle's "first match
// wins" rule lets the real provider claim its own types first.
type Provider struct {
	mu      sync.Mutex
	tracked map[string]bool
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{tracked: make(map[string]bool)}
}

func (p *Provider) Name() string    { return "memory" }
func (p *Provider) Version() string { return "1.0" }

// CanHandle matches everything.
func (p *Provider) CanHandle(r resource.Resource) bool { return true }

func (p *Provider) Configure(map[string]any) error   { return nil }
func (p *Provider) Initialize(context.Context) error { return nil }
func (p *Provider) Dispose(context.Context) error    { return nil }

func (p *Provider) Create(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked[r.ResourceID()] = true
	return &State{BaseState: resource.NewBaseState(r)}, nil
}

func (p *Provider) Read(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.tracked[r.ResourceID()] {
		return nil, errs.ResourceNotFound(r.ResourceID())
	}
	return &State{BaseState: resource.NewBaseState(r)}, nil
}

func (p *Provider) Update(ctx context.Context, current resource.ResourceState, desired resource.Resource) (resource.ResourceState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked[desired.ResourceID()] = true
	return &State{BaseState: resource.NewBaseState(desired)}, nil
}

func (p *Provider) Delete(ctx context.Context, current resource.ResourceState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tracked, current.StateResource().ResourceID())
	return nil
}
