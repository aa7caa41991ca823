// Package planner diffs a stack's desired resources against its actual
// state and produces a dependency-ordered plan of create, update, and
// delete operations, per the engine's three-batch scheduling rule.
package planner

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/graph"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
)

// Kind distinguishes the three operation types a Plan can contain.
type Kind int

const (
	Create Kind = iota
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// FieldDiff names one attribute that differs between the current and
// desired form of a resource being updated, produced only in verbose
// mode.
type FieldDiff struct {
	Field   string
	Current any
	Desired any
}

// Operation is one step of a Plan. Resource is the resource to dispatch
// to a provider: for a create emitted from an unresolved
// DependentResource, it is the wrapper itself, to be materialized by the
// executor once its dependencies are realized. Current is the
// previously-persisted state, set for update and delete.
type Operation struct {
	Kind     Kind
	Resource resource.Resource
	Current  resource.ResourceState
	Diffs    []FieldDiff
}

// Plan is the ordered result of diffing desired against actual: creates
// and updates in dependency order, then deletes in reverse dependency
// order. Unchanged is populated only in verbose mode.
type Plan struct {
	Operations []Operation
	Unchanged  []string
}

// Build runs the planner algorithm described in the component design:
// validate the desired dependency graph, classify each resource as
// create/update/delete/unchanged/skip, then order the result into three
// batches. verbose additionally records field-level diffs and unchanged
// ids.
func Build(reg *serializer.Registry, desired []resource.Resource, actual *resource.State, verbose bool) (*Plan, error) {
	g := graph.NewDAG()
	desiredByID := make(map[string]resource.Resource, len(desired))
	for _, r := range desired {
		g.Add(r.ResourceID(), idsOf(r.Dependencies()))
		desiredByID[r.ResourceID()] = r
	}
	if err := g.Validate(); err != nil {
		ve, ok := err.(*graph.ValidationError)
		if !ok {
			return nil, err
		}
		return nil, translateValidationError(ve)
	}

	// Resources that exist only in actual state (no longer desired) still
	// need a position in the ordering so their deletes respect the
	// dependency edges recorded when they were last persisted.
	for id, st := range actual.Resources {
		if _, stillDesired := desiredByID[id]; stillDesired {
			continue
		}
		res := st.StateResource()
		g.Add(id, idsOf(res.Dependencies()))
	}

	p := &Plan{}
	creates := make(map[string]resource.Resource)
	updates := make(map[string]resource.Resource)
	updateDiffs := make(map[string][]FieldDiff)
	deletes := make(map[string]bool)

	for id, r := range desiredByID {
		if _, inActual := actual.Resources[id]; inActual {
			continue
		}
		if r.IsReadOnly() {
			continue
		}
		creates[id] = resolveForCreate(r, actual)
	}

	for id, r := range desiredByID {
		current, inActual := actual.Resources[id]
		if !inActual {
			continue
		}
		if r.IsReadOnly() {
			if verbose {
				p.Unchanged = append(p.Unchanged, id)
			}
			continue
		}

		desiredResolved, ready := resolveForUpdate(r, actual)
		if !ready {
			continue
		}

		diffs, err := diffAttributes(reg, desiredResolved, current.StateResource())
		if err != nil {
			return nil, err
		}
		if len(diffs) == 0 {
			if verbose {
				p.Unchanged = append(p.Unchanged, id)
			}
			continue
		}
		updates[id] = desiredResolved
		if verbose {
			updateDiffs[id] = diffs
		}
	}

	for id, st := range actual.Resources {
		if _, stillDesired := desiredByID[id]; stillDesired {
			continue
		}
		if st.StateResource().IsReadOnly() {
			continue
		}
		deletes[id] = true
	}

	order := g.TopologicalOrder()
	for _, id := range order {
		if r, ok := creates[id]; ok {
			p.Operations = append(p.Operations, Operation{Kind: Create, Resource: r})
		}
	}
	for _, id := range order {
		if r, ok := updates[id]; ok {
			p.Operations = append(p.Operations, Operation{
				Kind:     Update,
				Resource: r,
				Current:  actual.Resources[id],
				Diffs:    updateDiffs[id],
			})
		}
	}
	for _, id := range g.ReverseTopologicalOrder() {
		if deletes[id] {
			p.Operations = append(p.Operations, Operation{Kind: Delete, Current: actual.Resources[id]})
		}
	}

	if verbose {
		sort.Strings(p.Unchanged)
	}
	return p, nil
}

func idsOf(deps []resource.Resource) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.ResourceID()
	}
	return out
}

func resolveForCreate(r resource.Resource, actual *resource.State) resource.Resource {
	dr, ok := r.(*resource.DependentResource)
	if !ok {
		return r
	}
	if !allDepsRealized(dr, actual) {
		return dr
	}
	built, err := dr.Materialize(actual.Resources)
	if err != nil {
		return dr
	}
	return built
}

func resolveForUpdate(r resource.Resource, actual *resource.State) (resource.Resource, bool) {
	dr, ok := r.(*resource.DependentResource)
	if !ok {
		return r, true
	}
	if !allDepsRealized(dr, actual) {
		return nil, false
	}
	built, err := dr.Materialize(actual.Resources)
	if err != nil {
		return nil, false
	}
	return built, true
}

func allDepsRealized(r resource.Resource, actual *resource.State) bool {
	for _, dep := range r.Dependencies() {
		if _, ok := actual.Resources[dep.ResourceID()]; !ok {
			return false
		}
	}
	return true
}

// diffAttributes compares desired's and current's serialized attribute
// fields, excluding the .type/id/dependencies/readOnly metadata keys, by
// field-wise deep equality on the JSON form.
func diffAttributes(reg *serializer.Registry, desired, current resource.Resource) ([]FieldDiff, error) {
	desiredJSON, err := resource.EncodeResource(reg, desired)
	if err != nil {
		return nil, err
	}
	currentJSON, err := resource.EncodeResource(reg, current)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool)
	for k := range desiredJSON {
		keys[k] = true
	}
	for k := range currentJSON {
		keys[k] = true
	}
	for _, meta := range []string{".type", "id", "dependencies", "readOnly"} {
		delete(keys, meta)
	}

	sortedKeys := make([]string, 0, len(keys))
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	var diffs []FieldDiff
	for _, k := range sortedKeys {
		dv, desiredHas := desiredJSON[k]
		cv, currentHas := currentJSON[k]
		if desiredHas != currentHas || !reflect.DeepEqual(dv, cv) {
			diffs = append(diffs, FieldDiff{Field: k, Current: cv, Desired: dv})
		}
	}
	return diffs, nil
}

func translateValidationError(ve *graph.ValidationError) error {
	msg := "missing dependencies:"
	for _, m := range ve.Missing {
		msg += fmt.Sprintf(" %s depends on undeclared %s,", m.ID, m.DependsOn)
	}
	return errs.Validation(msg[:len(msg)-1])
}
