// Package resource defines the engine's core data model: the immutable
// Resource record, its DependentResource late-binding variant, the
// ResourceState a provider produces when a Resource is realized, and the
// Stack/State containers that tie a set of resources to a provider list
// and a persisted actual state.
package resource

import "fmt"

// Resource is an immutable, user-declared record describing a piece of
// external state to manage. Concrete resource types embed Base and add
// their own exported attribute fields; equality for planning purposes is
// structural over those attribute fields, never over Id or Dependencies.
type Resource interface {
	ResourceID() string
	Dependencies() []Resource
	IsReadOnly() bool
}

// Base is embedded (anonymously) by every concrete Resource type. Its own
// fields are excluded from the reflective codec with `drft:"-"`; the id
// and dependency list are serialized separately by EncodeResource, since
// dependencies decode from a list of ids that must be rewired against
// sibling resources once the whole state is known.
type Base struct {
	Id           string     `drft:"-"`
	Deps         []Resource `drft:"-"`
	ReadOnlyFlag bool       `drft:"-"`
}

// NewBase constructs a Base for a resource the engine is expected to
// create, update, and delete.
func NewBase(id string, deps ...Resource) Base {
	return Base{Id: id, Deps: deps}
}

// NewReadOnlyBase constructs a Base for a resource the engine only
// observes via the read-only prepass.
func NewReadOnlyBase(id string, deps ...Resource) Base {
	return Base{Id: id, Deps: deps, ReadOnlyFlag: true}
}

func (b *Base) ResourceID() string       { return b.Id }
func (b *Base) Dependencies() []Resource { return b.Deps }
func (b *Base) IsReadOnly() bool         { return b.ReadOnlyFlag }

// ResourceState is the record a provider produces for a realized
// Resource. Concrete state types embed BaseState and add their own
// exported, provider-assigned read-only output fields.
type ResourceState interface {
	StateResource() Resource
}

// BaseState is embedded (anonymously, `drft:"-"`) by every concrete
// ResourceState type. Its Res field is serialized separately by
// EncodeState/decodeStateEntry under the "resource" key, for the same
// two-pass reason as Base.Deps.
type BaseState struct {
	Res Resource `drft:"-"`
}

func (s *BaseState) StateResource() Resource { return s.Res }

// NewBaseState wraps a realized Resource with no additional outputs.
func NewBaseState(res Resource) BaseState { return BaseState{Res: res} }

// GenericState is the fallback ResourceState used when a persisted
// entry's recorded .type cannot be resolved against the registry (a
// provider-specific state subtype has since been removed from the
// binary). It preserves the nested Resource and drops everything else.
type GenericState struct {
	BaseState `drft:"-"`
}

// Builder produces a concrete Resource from the realized states of a
// DependentResource's dependencies, in the same order as Dependencies().
// It is pure: it must not perform I/O or mutate its arguments.
type Builder func(depStates []ResourceState) (Resource, error)

// DependentResource is a resource whose final form is unknown until its
// dependencies are realized. It is never dispatched to a provider
// directly; the planner and executor materialize it via Build once every
// dependency's ResourceState is available.
type DependentResource struct {
	Base
	Build Builder
}

// NewDependentResource constructs a DependentResource over deps, deferring
// its concrete shape to build.
func NewDependentResource(id string, deps []Resource, build Builder) *DependentResource {
	return &DependentResource{Base: NewBase(id, deps...), Build: build}
}

// Materialize resolves d's dependencies against states (keyed by resource
// id) and invokes its builder. It returns an error if any dependency is
// not yet present in states; by the dependency-graph invariant this can
// only happen if the caller invoked Materialize out of order.
func (d *DependentResource) Materialize(states map[string]ResourceState) (Resource, error) {
	depStates := make([]ResourceState, len(d.Deps))
	for i, dep := range d.Deps {
		st, ok := states[dep.ResourceID()]
		if !ok {
			return nil, fmt.Errorf("resource: dependency %q of %q is not yet realized", dep.ResourceID(), d.Id)
		}
		depStates[i] = st
	}
	return d.Build(depStates)
}
