// Package provider defines the contract a resource family's adapter must
// satisfy to be driven by the planner and executor, plus a small ordered
// registry mirroring a stack's provider list.
package provider

import (
	"context"
	"reflect"

	"github.com/drft-io/drft/internal/resource"
)

// Provider is identified by Name/Version and implements CRUD for one or
// more concrete resource.Resource types. A provider handling multiple
// resource families routes internally (e.g. a type switch inside each
// method); the engine never asks a provider "which types do you handle"
// beyond CanHandle.
type Provider interface {
	Name() string
	Version() string

	// CanHandle reports whether this provider is responsible for r.
	CanHandle(r resource.Resource) bool

	Configure(config map[string]any) error
	Initialize(ctx context.Context) error
	Dispose(ctx context.Context) error

	Create(ctx context.Context, r resource.Resource) (resource.ResourceState, error)
	Read(ctx context.Context, r resource.Resource) (resource.ResourceState, error)
	Update(ctx context.Context, current resource.ResourceState, desired resource.Resource) (resource.ResourceState, error)
	Delete(ctx context.Context, current resource.ResourceState) error
}

// Base gives a concrete provider a default CanHandle that matches by the
// static Go type of a sample resource value, sparing most providers from
// writing their own type-switch just to answer "is this mine". A
// provider handling several resource types embeds Base once and calls
// Handles once per type it owns, or overrides CanHandle directly when a
// single switch is clearer.
type Base struct {
	handles []reflect.Type
}

// Handles records sample's concrete type as one this provider owns.
// Called from a provider's constructor, once per resource type.
func (b *Base) Handles(sample resource.Resource) {
	b.handles = append(b.handles, elemType(sample))
}

// CanHandle reports whether r's concrete type was registered via Handles.
func (b *Base) CanHandle(r resource.Resource) bool {
	t := elemType(r)
	for _, h := range b.handles {
		if h == t {
			return true
		}
	}
	return false
}

func elemType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Registry holds a stack's providers in declaration order: the order in
// which they are consulted by Lookup, matching the spec's "first
// provider in stack order whose CanHandle returns true" rule.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a Registry over providers, preserving their order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: append([]Provider{}, providers...)}
}

// Lookup returns the first provider (in registration order) whose
// CanHandle(r) is true, or nil if none claims r.
func (reg *Registry) Lookup(r resource.Resource) Provider {
	for _, p := range reg.providers {
		if p.CanHandle(r) {
			return p
		}
	}
	return nil
}

// All returns the registered providers in declaration order.
func (reg *Registry) All() []Provider {
	return append([]Provider{}, reg.providers...)
}
