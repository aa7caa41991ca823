package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drft-io/drft/internal/provider"
	"github.com/drft-io/drft/internal/resource"
)

type widget struct {
	resource.Base `drft:"-"`
}

type gadget struct {
	resource.Base `drft:"-"`
}

type widgetState struct {
	resource.BaseState `drft:"-"`
}

type widgetProvider struct {
	provider.Base
}

func newWidgetProvider() *widgetProvider {
	p := &widgetProvider{}
	p.Handles(&widget{})
	return p
}

func (p *widgetProvider) Name() string    { return "widgets" }
func (p *widgetProvider) Version() string { return "1.0.0" }

func (p *widgetProvider) Configure(map[string]any) error      { return nil }
func (p *widgetProvider) Initialize(context.Context) error    { return nil }
func (p *widgetProvider) Dispose(context.Context) error       { return nil }

func (p *widgetProvider) Create(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	return &widgetState{BaseState: resource.NewBaseState(r)}, nil
}

func (p *widgetProvider) Read(ctx context.Context, r resource.Resource) (resource.ResourceState, error) {
	return &widgetState{BaseState: resource.NewBaseState(r)}, nil
}

func (p *widgetProvider) Update(ctx context.Context, current resource.ResourceState, desired resource.Resource) (resource.ResourceState, error) {
	return &widgetState{BaseState: resource.NewBaseState(desired)}, nil
}

func (p *widgetProvider) Delete(ctx context.Context, current resource.ResourceState) error {
	return nil
}

func TestBaseCanHandleMatchesRegisteredType(t *testing.T) {
	p := newWidgetProvider()
	assert.True(t, p.CanHandle(&widget{Base: resource.NewBase("w1")}))
	assert.False(t, p.CanHandle(&gadget{Base: resource.NewBase("g1")}))
}

func TestRegistryLookupReturnsFirstMatchInOrder(t *testing.T) {
	p1 := newWidgetProvider()
	p2 := newWidgetProvider()
	reg := provider.NewRegistry(p1, p2)

	got := reg.Lookup(&widget{Base: resource.NewBase("w1")})
	require.NotNil(t, got)
	assert.Same(t, p1, got)
	assert.Equal(t, "widgets", got.Name())

	assert.Nil(t, reg.Lookup(&gadget{Base: resource.NewBase("g1")}))
}
