// FILE: lixenwraith/globalconfig/value.go
package globalconfig

import (
	"encoding"
	"encoding/json"
	"reflect"
	"sort"
)

// Kind classifies a configuration value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "invalid"
	}
}

var (
	jsonNumberType    = reflect.TypeOf(json.Number(""))
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// KindOf reports the kind of a configuration value.
// Values outside the configuration domain (funcs, channels, structs) report KindInvalid.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case *Map:
		if t == nil {
			return KindNull
		}
		return KindMapping
	case bool:
		return KindBool
	case string:
		return KindString
	case json.Number:
		return KindNumber
	case map[string]any:
		return KindMapping
	case []any:
		return KindSequence
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		return KindOf(rv.Elem().Interface())
	}
	return KindInvalid
}

// Map is an insertion-ordered mapping from string keys to configuration values.
// Setting an existing key keeps its position. The zero value is an empty Map.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key and returns the map for chaining.
func (m *Map) Set(key string, value any) *Map {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Merge returns a new Map holding the entries of m overridden by the top-level
// entries of other. Nested values are shared, not merged.
func (m *Map) Merge(other *Map) *Map {
	merged := NewMap()
	m.Range(func(k string, v any) bool {
		merged.Set(k, v)
		return true
	})
	other.Range(func(k string, v any) bool {
		merged.Set(k, v)
		return true
	})
	return merged
}

// ToMap converts m into nested map[string]any and []any values, dropping key order.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v any) bool {
		out[k] = plainValue(v)
		return true
	})
	return out
}

// FromMap builds a Map from a Go map. Keys are inserted in sorted order because
// Go maps carry none. Nested maps and slices are converted recursively.
func FromMap(src map[string]any) *Map {
	m := NewMap()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, Normalize(src[k]))
	}
	return m
}

// Normalize converts Go mappings into *Map and Go slices into []any, recursively.
// Other values are returned unchanged.
func Normalize(v any) any {
	switch t := v.(type) {
	case *Map, nil, string, bool, json.Number:
		return v
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		src := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			src[iter.Key().String()] = iter.Value().Interface()
		}
		return FromMap(src)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v // []byte is a leaf
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// plainValue converts *Map values nested anywhere in v into map[string]any.
func plainValue(v any) any {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return nil
		}
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	}
	return v
}

// deepCopy copies mappings and sequences so the result shares no containers with v.
// A cyclic v fails with ErrSerialization.
func deepCopy(v any) (any, error) {
	return copyValue(v, make(cycleGuard))
}

func copyValue(v any, guard cycleGuard) (any, error) {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return (*Map)(nil), nil
		}
		leave, err := guard.enter(reflect.ValueOf(t))
		if err != nil {
			return nil, err
		}
		defer leave()

		out := NewMap()
		var copyErr error
		t.Range(func(k string, e any) bool {
			var c any
			if c, copyErr = copyValue(e, guard); copyErr != nil {
				return false
			}
			out.Set(k, c)
			return true
		})
		if copyErr != nil {
			return nil, copyErr
		}
		return out, nil

	case []any:
		leave, err := guard.enter(reflect.ValueOf(t))
		if err != nil {
			return nil, err
		}
		defer leave()

		out := make([]any, len(t))
		for i, e := range t {
			if out[i], err = copyValue(e, guard); err != nil {
				return nil, err
			}
		}
		return out, nil

	case map[string]any:
		if t == nil {
			return make(map[string]any), nil
		}
		leave, err := guard.enter(reflect.ValueOf(t))
		if err != nil {
			return nil, err
		}
		defer leave()

		out := make(map[string]any, len(t))
		for k, e := range t {
			if out[k], err = copyValue(e, guard); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v, nil
}
