// Package serializer implements the reflective tagged-JSON codec described
// in the engine's data model: arbitrary user-defined record types are
// encoded to and decoded from a canonical JSON shape without any code
// generation step, using a small runtime type registry in place of the
// constructor discovery a reflective host language would do natively.
//
// A record serializes to a JSON object carrying a ".type" tag plus one
// entry per non-excluded field. Field names default to the Go field name
// with its first letter lower-cased; a `drft:"name"` tag overrides the
// name, `drft:"name,omitempty"` marks a field optional on decode and
// omits it from encode when it holds its zero value, and `drft:"-"`
// excludes the field from the canonical form entirely (used by callers
// that manage a field, such as an id or a dependency list, outside the
// generic codec).
package serializer

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// FieldMapper lets a caller intercept a field before the default decode
// logic runs. It is invoked once per field (in registration order) with
// the field's declared name and the raw JSON value (nil if absent). If it
// returns handled=true, its returned value is assigned directly to the
// field (after a type-compatibility check); otherwise default decoding
// proceeds as if no mapper were registered.
type FieldMapper func(fieldName string, raw any) (value any, handled bool, err error)

type typeCodec struct {
	encode func(v any) (any, error)
	decode func(raw any) (any, error)
}

// Registry holds the set of types and custom codecs a particular
// application has registered, plus a small cache of struct field
// metadata keyed by reflect.Type.
type Registry struct {
	tags    map[string]reflect.Type
	names   map[reflect.Type]string
	codecs  []codecEntry
	structs map[reflect.Type][]fieldInfo
	enums   map[reflect.Type]map[string]reflect.Value
}

type codecEntry struct {
	typ    reflect.Type
	interf bool // typ is an interface; match via Implements
	codec  typeCodec
}

type fieldInfo struct {
	index    int
	name     string
	optional bool
	excluded bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tags:    make(map[string]reflect.Type),
		names:   make(map[reflect.Type]string),
		structs: make(map[reflect.Type][]fieldInfo),
	}
}

// Register associates a type tag with a struct type, using sample only to
// capture its reflect.Type (its field values are ignored). sample may be a
// struct value or a pointer to one. Registering a tag that is already bound
// to a different type panics; registering it again for the same type
// changes nothing. Decoding a tag that was never registered returns a
// *DecodeError from Decode; Register itself never sees that tag.
func (r *Registry) Register(tag string, sample any) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("serializer: Register(%q): sample must be a struct or pointer to struct, got %s", tag, t.Kind()))
	}
	if existing, ok := r.tags[tag]; ok && existing != t {
		panic(fmt.Sprintf("serializer: tag %q already registered for %s", tag, existing))
	}
	r.tags[tag] = t
	r.names[t] = tag
	r.structs[t] = fieldsOf(t)
}

// RegisterCodec installs a custom (toJSON, fromJSON) pair for instances of
// sample's type, including subtypes when sample is an interface value
// (pass a nil pointer of the interface type, e.g. (*io.Reader)(nil), to
// register against an interface rather than a concrete type). Custom
// codecs are checked before falling back to struct/slice/map handling,
// so they apply to opaque leaf types such as *url.URL.
func (r *Registry) RegisterCodec(sample any, toJSON func(v any) (any, error), fromJSON func(raw any) (any, error)) {
	t := reflect.TypeOf(sample)
	entry := codecEntry{codec: typeCodec{encode: toJSON, decode: fromJSON}}
	if t == nil {
		panic("serializer: RegisterCodec requires a non-nil, non-interface-zero sample")
	}
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		entry.typ = t.Elem()
		entry.interf = true
	} else {
		entry.typ = t
	}
	r.codecs = append(r.codecs, entry)
}

func (r *Registry) codecFor(t reflect.Type) (typeCodec, bool) {
	for _, e := range r.codecs {
		if e.interf {
			if t.Implements(e.typ) {
				return e.codec, true
			}
			continue
		}
		if t == e.typ {
			return e.codec, true
		}
	}
	return typeCodec{}, false
}

// Resolves reports whether tag has a registered type.
func (r *Registry) Resolves(tag string) bool {
	_, ok := r.tags[tag]
	return ok
}

// TagFor returns the registered tag for v's concrete type, or "" if none.
func (r *Registry) TagFor(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return r.names[t]
}

func fieldsOf(t reflect.Type) []fieldInfo {
	var out []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue // unexported
		}
		tag := f.Tag.Get("drft")
		if tag == "-" {
			out = append(out, fieldInfo{index: i, excluded: true})
			continue
		}
		name := lowerFirst(f.Name)
		optional := false
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					optional = true
				}
			}
		}
		out = append(out, fieldInfo{index: i, name: name, optional: optional})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// sortedTags returns registered tags sorted, for deterministic error
// messages and test assertions.
func (r *Registry) sortedTags() []string {
	out := make([]string, 0, len(r.tags))
	for t := range r.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
