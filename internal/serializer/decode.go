package serializer

import "reflect"

// Decode reconstructs a value of the type registered under tag from its
// canonical tagged-JSON form. mapper, if non-nil, is consulted once per
// field of the target type (in registration order) before the default
// decode logic for that field runs; pass nil to decode with pure default
// behavior. Nested fields (struct, interface, slice, map) decode through
// the same rules recursively, but only the outermost call's fields pass
// through mapper.
func (r *Registry) Decode(tag string, data map[string]any, mapper FieldMapper) (any, error) {
	t, ok := r.tags[tag]
	if !ok {
		return nil, decodeErr(tag, "", "unresolvable type %q (known types: %v)", tag, r.sortedTags())
	}

	out := reflect.New(t)
	for _, f := range r.structs[t] {
		if f.excluded {
			continue
		}
		raw, present := data[f.name]

		if mapper != nil {
			val, handled, err := mapper(f.name, raw)
			if err != nil {
				return nil, err
			}
			if handled {
				if err := setField(out.Elem().Field(f.index), val); err != nil {
					return nil, decodeErr(tag, f.name, "mapper returned an incompatible value: %v", err)
				}
				continue
			}
		}

		if !present {
			if f.optional {
				continue
			}
			return nil, decodeErr(tag, f.name, "required field is missing")
		}

		fv := out.Elem().Field(f.index)
		decoded, err := r.decodeInto(fv.Type(), raw)
		if err != nil {
			if de, ok := err.(*DecodeError); ok && de.Type == "" {
				de.Type = tag
				de.Field = f.name
				return nil, de
			}
			return nil, err
		}
		if err := setField(fv, decoded); err != nil {
			return nil, decodeErr(tag, f.name, "value has the wrong shape: %v", err)
		}
	}
	return out.Interface(), nil
}

// decodeInto decodes raw into a value assignable to the declared Go type t,
// recursing for structs, pointers, slices, maps and non-empty interfaces.
// A field typed as the empty interface (any) is passed through unchanged,
// since it represents an untyped attribute bag rather than a polymorphic
// record.
func (r *Registry) decodeInto(t reflect.Type, raw any) (any, error) {
	if codec, ok := r.codecFor(t); ok {
		return codec.decode(raw)
	}

	if isEnum(t) || isEnum(reflect.PtrTo(t)) {
		name, ok := raw.(string)
		if !ok {
			return nil, decodeErr("", "", "enum %s requires a string name, got %T", t, raw)
		}
		v, ok := r.enumValue(t, name)
		if !ok {
			return nil, decodeErr("", "", "unknown enum value %q for %s", name, t)
		}
		return v.Interface(), nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return raw, nil
		}
		if raw == nil {
			return nil, nil
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("", "", "field of interface type %s requires a tagged object, got %T", t, raw)
		}
		nestedTag, _ := m[".type"].(string)
		if nestedTag == "" {
			return nil, decodeErr("", "", "nested object is missing a .type tag")
		}
		nt, ok := r.tags[nestedTag]
		if !ok {
			return nil, decodeErr(nestedTag, "", "unresolvable type %q", nestedTag)
		}
		if !nt.Implements(t) && !reflect.PtrTo(nt).Implements(t) {
			return nil, decodeErr(nestedTag, "", "%s does not implement %s", nt, t)
		}
		return r.Decode(nestedTag, m, nil)

	case reflect.Ptr:
		if raw == nil {
			return reflect.Zero(t).Interface(), nil
		}
		elem, err := r.decodeInto(t.Elem(), raw)
		if err != nil {
			return nil, err
		}
		pv := reflect.New(t.Elem())
		if elem != nil {
			if err := setField(pv.Elem(), elem); err != nil {
				return nil, decodeErr("", "", "cannot decode into *%s: %v", t.Elem(), err)
			}
		}
		return pv.Interface(), nil

	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("", "", "expected an object for %s, got %T", t, raw)
		}
		tag, registered := r.names[t]
		if !registered {
			return nil, decodeErr("", "", "type %s is not registered", t)
		}
		if got, _ := m[".type"].(string); got != "" && got != tag {
			return nil, decodeErr(tag, "", "type mismatch: expected %q, got %q", tag, got)
		}
		v, err := r.Decode(tag, m, nil)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Elem().Interface(), nil

	case reflect.Slice:
		if raw == nil {
			return reflect.Zero(t).Interface(), nil
		}
		arr, ok := raw.([]any)
		if !ok {
			return nil, decodeErr("", "", "expected an array for %s, got %T", t, raw)
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, item := range arr {
			dv, err := r.decodeInto(t.Elem(), item)
			if err != nil {
				return nil, err
			}
			if dv == nil {
				continue
			}
			if err := setField(out.Index(i), dv); err != nil {
				return nil, decodeErr("", "", "element %d of %s: %v", i, t, err)
			}
		}
		return out.Interface(), nil

	case reflect.Map:
		if raw == nil {
			return reflect.Zero(t).Interface(), nil
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("", "", "expected an object for %s, got %T", t, raw)
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for k, val := range m {
			dv, err := r.decodeInto(t.Elem(), val)
			if err != nil {
				return nil, err
			}
			ev := reflect.New(t.Elem()).Elem()
			if dv != nil {
				if err := setField(ev, dv); err != nil {
					return nil, decodeErr("", "", "value for key %q of %s: %v", k, t, err)
				}
			}
			out.SetMapIndex(reflect.ValueOf(k), ev)
		}
		return out.Interface(), nil

	default:
		if raw == nil {
			return reflect.Zero(t).Interface(), nil
		}
		rv := reflect.ValueOf(raw)
		if rv.Type().AssignableTo(t) {
			return raw, nil
		}
		if rv.Type().ConvertibleTo(t) {
			return rv.Convert(t).Interface(), nil
		}
		return nil, decodeErr("", "", "cannot decode %T into %s", raw, t)
	}
}

func setField(fv reflect.Value, val any) error {
	if val == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(fv.Type()) {
		fv.Set(rv.Convert(fv.Type()))
		return nil
	}
	return decodeErr("", "", "cannot assign %s to %s", rv.Type(), fv.Type())
}
