// FILE: lixenwraith/globalconfig/encode.go
package globalconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// containerID identifies a mapping or sequence currently on the encoding path.
type containerID struct {
	ptr uintptr
	len int
}

// cycleGuard tracks containers being visited so re-entering one is reported as a cycle.
// Containers visited on sibling branches are not cycles.
type cycleGuard map[containerID]struct{}

func (g cycleGuard) enter(rv reflect.Value) (func(), error) {
	var id containerID
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map:
		id = containerID{ptr: rv.Pointer()}
	case reflect.Slice:
		if rv.Len() == 0 {
			return func() {}, nil
		}
		id = containerID{ptr: rv.Pointer(), len: rv.Len()}
	default:
		return func() {}, nil
	}

	if _, seen := g[id]; seen {
		return nil, fmt.Errorf("%w: cyclic reference to %s", ErrSerialization, rv.Type())
	}
	g[id] = struct{}{}
	return func() { delete(g, id) }, nil
}

// encoder writes compact JSON with Map key order preserved.
type encoder struct {
	buf   bytes.Buffer
	guard cycleGuard
}

func newEncoder() *encoder {
	return &encoder{guard: make(cycleGuard)}
}

// EncodeJSON renders any configuration value the way Serialize renders the
// whole configuration.
func EncodeJSON(v any) ([]byte, error) {
	return encodeJSON(v)
}

// encodeJSON renders v as compact JSON without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	e := newEncoder()
	if err := e.encode(v); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

func (e *encoder) encode(v any) error {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
		return nil
	case *Map:
		if t == nil {
			e.buf.WriteString("null")
			return nil
		}
		return e.encodeMap(t)
	case map[string]any, []any:
		return e.encodeReflect(reflect.ValueOf(v))
	case json.Number, string, bool:
		return e.encodeLeaf(v)
	}
	return e.encodeReflect(reflect.ValueOf(v))
}

func (e *encoder) encodeMap(m *Map) error {
	leave, err := e.guard.enter(reflect.ValueOf(m))
	if err != nil {
		return err
	}
	defer leave()

	e.buf.WriteByte('{')
	first := true
	var rangeErr error
	m.Range(func(k string, v any) bool {
		if !first {
			e.buf.WriteByte(',')
		}
		first = false
		if rangeErr = e.encodeLeaf(k); rangeErr != nil {
			return false
		}
		e.buf.WriteByte(':')
		if rangeErr = e.encode(v); rangeErr != nil {
			return false
		}
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeReflect(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return e.encodeLeaf(rv.Interface())
		}
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		leave, err := e.guard.enter(rv)
		if err != nil {
			return err
		}
		defer leave()

		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		e.buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encodeLeaf(k); err != nil {
				return err
			}
			e.buf.WriteByte(':')
			val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			if err := e.encode(val.Interface()); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
		return nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return e.encodeLeaf(rv.Interface())
			}
			if rv.IsNil() {
				e.buf.WriteString("null")
				return nil
			}
		}
		leave, err := e.guard.enter(rv)
		if err != nil {
			return err
		}
		defer leave()

		e.buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encode(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
		return nil

	case reflect.Ptr:
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		switch rv.Elem().Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Ptr:
		default:
			// Pointers to scalars and structs keep their own marshalers
			return e.encodeLeaf(rv.Interface())
		}
		leave, err := e.guard.enter(rv)
		if err != nil {
			return err
		}
		defer leave()
		return e.encode(rv.Elem().Interface())
	}

	return e.encodeLeaf(rv.Interface())
}

// encodeLeaf delegates scalar encoding to encoding/json.
// A *Map reached inside the leaf is encoded by a fresh encoder through
// MarshalJSON, so the leaf is walked under the current guard first.
func (e *encoder) encodeLeaf(v any) error {
	if err := e.guard.walk(reflect.ValueOf(v)); err != nil {
		return err
	}
	var leaf bytes.Buffer
	enc := json.NewEncoder(&leaf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	e.buf.Write(bytes.TrimSuffix(leaf.Bytes(), []byte("\n")))
	return nil
}

// checkAcyclic reports ErrSerialization if v contains a cycle.
func checkAcyclic(v any) error {
	return make(cycleGuard).walk(reflect.ValueOf(v))
}

var mapPtrType = reflect.TypeOf((*Map)(nil))

// walk descends through every container reachable from rv, including struct
// fields and pointers, and fails when it re-enters a container on the current path.
func (g cycleGuard) walk(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return g.walk(rv.Elem())

	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		leave, err := g.enter(rv)
		if err != nil {
			return err
		}
		defer leave()

		if rv.Type() == mapPtrType {
			if !rv.CanInterface() {
				return nil
			}
			var walkErr error
			rv.Interface().(*Map).Range(func(_ string, e any) bool {
				walkErr = g.walk(reflect.ValueOf(e))
				return walkErr == nil
			})
			return walkErr
		}
		return g.walk(rv.Elem())

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		leave, err := g.enter(rv)
		if err != nil {
			return err
		}
		defer leave()

		iter := rv.MapRange()
		for iter.Next() {
			if err := g.walk(iter.Value()); err != nil {
				return err
			}
		}

	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		leave, err := g.enter(rv)
		if err != nil {
			return err
		}
		defer leave()

		for i := 0; i < rv.Len(); i++ {
			if err := g.walk(rv.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := g.walk(rv.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Struct:
		// Only exported fields reach encoding/json and yaml.v3
		t := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := g.walk(rv.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	return encodeJSON(m)
}
