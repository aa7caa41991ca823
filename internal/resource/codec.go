package resource

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/drft-io/drft/internal/serializer"
)

const genericStateTag = "resourceState"

// RegisterBuiltins registers the types this package itself contributes to
// a serializer registry: the GenericState fallback used when a
// provider-specific state type can no longer be resolved. Callers
// register their own Resource and ResourceState subtypes separately.
func RegisterBuiltins(reg *serializer.Registry) {
	reg.Register(genericStateTag, GenericState{})
}

// EncodeResource converts a single Resource to its canonical JSON form:
// the registry's tagged encoding of its attribute fields, plus "id" and
// "dependencies" (a list of dependency ids), which the registry never
// sees since Base's fields are excluded from generic encoding.
func EncodeResource(reg *serializer.Registry, r Resource) (map[string]any, error) {
	m, err := reg.Encode(r)
	if err != nil {
		return nil, err
	}
	deps := make([]any, len(r.Dependencies()))
	for i, d := range r.Dependencies() {
		deps[i] = d.ResourceID()
	}
	m["id"] = r.ResourceID()
	m["dependencies"] = deps
	if r.IsReadOnly() {
		// Persisted so the planner can tell, for an id that has dropped
		// out of the desired set, whether it was ever owned by a
		// create/update/delete or only ever observed by the read-only
		// prepass; the Go type alone can't answer that once decoded
		// generically.
		m["readOnly"] = true
	}
	return m, nil
}

// EncodeState converts a single ResourceState to its canonical JSON form:
// the registry's tagged encoding of its own output fields, plus a
// "resource" key holding the nested, fully-tagged Resource JSON.
func EncodeState(reg *serializer.Registry, s ResourceState) (map[string]any, error) {
	m, err := reg.Encode(s)
	if err != nil {
		return nil, err
	}
	resJSON, err := EncodeResource(reg, s.StateResource())
	if err != nil {
		return nil, err
	}
	m["resource"] = resJSON
	return m, nil
}

// EncodePersistedState converts an entire State to the on-disk JSON shape
// described by the state file format: version, stack, a resources map
// keyed by id, and metadata.
func EncodePersistedState(reg *serializer.Registry, st *State) (map[string]any, error) {
	resources := make(map[string]any, len(st.Resources))
	for id, s := range st.Resources {
		enc, err := EncodeState(reg, s)
		if err != nil {
			return nil, fmt.Errorf("resource: encode state %q: %w", id, err)
		}
		resources[id] = enc
	}
	meta := st.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"version":   st.Version,
		"stack":     st.Stack,
		"lineage":   st.Lineage,
		"resources": resources,
		"metadata":  meta,
	}, nil
}

// DecodePersistedState reconstructs a State from its on-disk JSON shape.
// Reconstruction is a two-pass walk: pass one decodes every resource and
// state with dependency lists elided (dependencies are ids, and the
// dependency's own Resource object may not exist yet); pass two resolves
// each resource's stashed dependency ids against the now-complete id to
// Resource population and rewires its Deps field in place.
func DecodePersistedState(reg *serializer.Registry, raw map[string]any) (*State, error) {
	version, _ := raw["version"].(string)
	stackName, _ := raw["stack"].(string)
	lineage, _ := raw["lineage"].(string)
	rawResources, _ := raw["resources"].(map[string]any)

	if lineage == "" {
		// Pre-lineage state file; stamp one now rather than leaving it
		// empty forever.
		lineage = uuid.NewString()
	}

	st := &State{
		Version:   version,
		Stack:     stackName,
		Lineage:   lineage,
		Resources: make(map[string]ResourceState, len(rawResources)),
		Metadata:  map[string]any{},
	}
	if meta, ok := raw["metadata"].(map[string]any); ok {
		st.Metadata = meta
	}

	resourcesByID := make(map[string]Resource, len(rawResources))
	depIDsByID := make(map[string][]string, len(rawResources))

	for id, rawEntry := range rawResources {
		entry, ok := rawEntry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("resource: state entry %q is not an object", id)
		}
		state, res, depIDs, err := decodeStateEntry(reg, entry)
		if err != nil {
			return nil, fmt.Errorf("resource: decode state %q: %w", id, err)
		}
		st.Resources[id] = state
		resourcesByID[id] = res
		depIDsByID[id] = depIDs
	}

	for id, res := range resourcesByID {
		depIDs := depIDsByID[id]
		deps := make([]Resource, 0, len(depIDs))
		for _, depID := range depIDs {
			dep, ok := resourcesByID[depID]
			if !ok {
				return nil, fmt.Errorf("resource: %q depends on unknown resource %q", id, depID)
			}
			deps = append(deps, dep)
		}
		if err := setBaseDeps(res, deps); err != nil {
			return nil, fmt.Errorf("resource: rewire dependencies of %q: %w", id, err)
		}
	}

	return st, nil
}

// decodeStateEntry decodes a single "resources[id]" object: the nested
// resource (with its dependency ids stashed, not yet rewired) and the
// state wrapper around it. If the state's own .type cannot be resolved,
// it falls back to GenericState, preserving only the nested resource.
func decodeStateEntry(reg *serializer.Registry, entry map[string]any) (ResourceState, Resource, []string, error) {
	rawRes, ok := entry["resource"].(map[string]any)
	if !ok {
		return nil, nil, nil, fmt.Errorf("missing \"resource\" field")
	}
	resourceTag, _ := rawRes[".type"].(string)
	if resourceTag == "" {
		return nil, nil, nil, fmt.Errorf("nested resource is missing a .type tag")
	}
	decoded, err := reg.Decode(resourceTag, rawRes, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	res, ok := decoded.(Resource)
	if !ok {
		return nil, nil, nil, fmt.Errorf("decoded type %T does not implement Resource", decoded)
	}

	id, _ := rawRes["id"].(string)
	if err := setBaseID(res, id); err != nil {
		return nil, nil, nil, err
	}
	if readOnly, _ := rawRes["readOnly"].(bool); readOnly {
		if err := setBaseReadOnly(res, true); err != nil {
			return nil, nil, nil, err
		}
	}

	var depIDs []string
	if rawDeps, ok := rawRes["dependencies"].([]any); ok {
		for _, d := range rawDeps {
			depID, ok := d.(string)
			if !ok {
				return nil, nil, nil, fmt.Errorf("dependency id %v is not a string", d)
			}
			depIDs = append(depIDs, depID)
		}
	}

	stateTag, _ := entry[".type"].(string)
	var state ResourceState
	if stateTag != "" && reg.Resolves(stateTag) {
		decodedState, err := reg.Decode(stateTag, entry, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := setBaseStateResource(decodedState, res); err != nil {
			return nil, nil, nil, err
		}
		s, ok := decodedState.(ResourceState)
		if !ok {
			return nil, nil, nil, fmt.Errorf("decoded type %T does not implement ResourceState", decodedState)
		}
		state = s
	} else {
		state = &GenericState{BaseState: NewBaseState(res)}
	}

	return state, res, depIDs, nil
}

// setBaseID, setBaseDeps and setBaseStateResource reach through an
// unknown concrete Resource/ResourceState type to its embedded Base or
// BaseState via reflection. This works because Base's and BaseState's
// fields are exported; the registry never touches them since they carry
// `drft:"-"`.
func setBaseID(res Resource, id string) error {
	v := reflect.ValueOf(res)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("resource value %T is not a pointer", res)
	}
	f := v.Elem().FieldByName("Id")
	if !f.IsValid() || !f.CanSet() {
		return fmt.Errorf("resource type %T has no settable embedded Base.Id", res)
	}
	f.SetString(id)
	return nil
}

func setBaseReadOnly(res Resource, readOnly bool) error {
	v := reflect.ValueOf(res)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("resource value %T is not a pointer", res)
	}
	f := v.Elem().FieldByName("ReadOnlyFlag")
	if !f.IsValid() || !f.CanSet() {
		return fmt.Errorf("resource type %T has no settable embedded Base.ReadOnlyFlag", res)
	}
	f.SetBool(readOnly)
	return nil
}

func setBaseDeps(res Resource, deps []Resource) error {
	v := reflect.ValueOf(res)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("resource value %T is not a pointer", res)
	}
	f := v.Elem().FieldByName("Deps")
	if !f.IsValid() || !f.CanSet() {
		return fmt.Errorf("resource type %T has no settable embedded Base.Deps", res)
	}
	f.Set(reflect.ValueOf(deps))
	return nil
}

func setBaseStateResource(state any, res Resource) error {
	v := reflect.ValueOf(state)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("state value %T is not a pointer", state)
	}
	f := v.Elem().FieldByName("Res")
	if !f.IsValid() || !f.CanSet() {
		return fmt.Errorf("state type %T has no settable embedded BaseState.Res", state)
	}
	f.Set(reflect.ValueOf(res))
	return nil
}
