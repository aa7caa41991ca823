package serializer

import "reflect"

// Enum is implemented by finite-choice value types that should be encoded
// as their symbolic name rather than their underlying representation.
type Enum interface {
	EnumName() string
}

// RegisterEnum teaches the registry every valid value of an enum type, so
// it can encode a value to its name and decode a name back to a value.
// sample is only used to capture the type.
func (r *Registry) RegisterEnum(sample Enum, values []Enum) {
	t := reflect.TypeOf(sample)
	byName := make(map[string]reflect.Value, len(values))
	for _, v := range values {
		byName[v.EnumName()] = reflect.ValueOf(v)
	}
	if r.enums == nil {
		r.enums = make(map[reflect.Type]map[string]reflect.Value)
	}
	r.enums[t] = byName
}

func (r *Registry) enumValue(t reflect.Type, name string) (reflect.Value, bool) {
	byName, ok := r.enums[t]
	if !ok {
		return reflect.Value{}, false
	}
	v, ok := byName[name]
	return v, ok
}

func isEnum(t reflect.Type) bool {
	return t.Implements(reflect.TypeOf((*Enum)(nil)).Elem())
}
