package serializer

import (
	"fmt"
	"reflect"
)

// Encode converts v into its canonical tagged-JSON form: a map carrying a
// ".type" key plus one entry per non-excluded field, with nested records,
// slices, maps and custom-codec leaves encoded recursively. v's concrete
// type must have been registered with Register. Encoding an object graph
// that contains a cycle (through pointers or interfaces holding pointers)
// returns an *EncodeError.
func (r *Registry) Encode(v any) (map[string]any, error) {
	enc, err := r.encodeValue(reflect.ValueOf(v), make(map[uintptr]bool))
	if err != nil {
		return nil, err
	}
	m, ok := enc.(map[string]any)
	if !ok {
		return nil, encodeErr("top-level value of type %T must encode to an object; register its type with Register", v)
	}
	return m, nil
}

func (r *Registry) encodeValue(v reflect.Value, visiting map[uintptr]bool) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return r.encodeValue(v.Elem(), visiting)
	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		ptr := v.Pointer()
		if visiting[ptr] {
			return nil, encodeErr("cycle detected encoding %s", v.Type())
		}
		visiting[ptr] = true
		defer delete(visiting, ptr)
		return r.encodeValue(v.Elem(), visiting)
	}

	t := v.Type()
	if codec, ok := r.codecFor(t); ok {
		return codec.encode(v.Interface())
	}
	if isEnum(t) {
		return v.Interface().(Enum).EnumName(), nil
	}

	switch v.Kind() {
	case reflect.Struct:
		tag, ok := r.names[t]
		if !ok {
			return nil, encodeErr("type %s is not registered", t)
		}
		out := map[string]any{".type": tag}
		for _, f := range r.structs[t] {
			if f.excluded {
				continue
			}
			fv := v.Field(f.index)
			if f.optional && fv.IsZero() {
				continue
			}
			enc, err := r.encodeValue(fv, visiting)
			if err != nil {
				return nil, err
			}
			out[f.name] = enc
		}
		return out, nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			enc, err := r.encodeValue(v.Index(i), visiting)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := formatMapKey(iter.Key())
			enc, err := r.encodeValue(iter.Value(), visiting)
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return out, nil

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Opaque runtime objects: best-effort stub. Decoding this back will
		// fail unless the field is optional and the key is simply absent.
		return map[string]any{".opaque": t.String()}, nil

	default:
		return v.Interface(), nil
	}
}

func formatMapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprintf("%v", k.Interface())
}
