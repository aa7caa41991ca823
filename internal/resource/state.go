package resource

import "github.com/google/uuid"

// State is the persisted actual state of a stack: a version tag, the
// stack name, a lineage id, and a mapping from resource id to the
// ResourceState last observed or produced for it. It carries no ordering
// of its own; any ordering needed for display or execution comes from the
// dependency graph, not from this map.
type State struct {
	Version   string
	Stack     string
	Lineage   string
	Resources map[string]ResourceState
	Metadata  map[string]any
}

// NewState returns an empty State for the given stack name, matching the
// shape the State Store returns when no state file exists yet. Lineage is
// stamped once here and carried forward by every later Save; it is an
// opaque provenance id, never parsed or load-bearing for planning.
func NewState(stack string) *State {
	return &State{
		Version:   "1.0",
		Stack:     stack,
		Lineage:   uuid.NewString(),
		Resources: make(map[string]ResourceState),
		Metadata:  make(map[string]any),
	}
}

// Clone returns a shallow copy of s with its own Resources and Metadata
// maps, so a caller can mutate the copy (e.g. build a working map) without
// affecting s.
func (s *State) Clone() *State {
	out := &State{
		Version:   s.Version,
		Stack:     s.Stack,
		Lineage:   s.Lineage,
		Resources: make(map[string]ResourceState, len(s.Resources)),
		Metadata:  make(map[string]any, len(s.Metadata)),
	}
	for id, st := range s.Resources {
		out.Resources[id] = st
	}
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	return out
}
