// FILE: lixenwraith/globalconfig/helper.go
package globalconfig

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// resolvePath walks a dot-separated path from root.
// Mappings are indexed by key and sequences by canonical non-negative integer.
// An empty path resolves to root itself.
func resolvePath(root any, path string) (any, bool) {
	if path == "" {
		return root, true
	}

	current := root
	for _, segment := range strings.Split(path, ".") {
		next, ok := index(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// index descends one level into a mapping or sequence.
func index(container any, segment string) (any, bool) {
	switch c := container.(type) {
	case *Map:
		return c.Get(segment)
	case map[string]any:
		v, ok := c[segment]
		return v, ok
	case []any:
		i, ok := sequenceIndex(segment, len(c))
		if !ok {
			return nil, false
		}
		return c[i], true
	case nil, string, bool:
		return nil, false
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		i, ok := sequenceIndex(segment, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// sequenceIndex parses a segment as an in-range position.
// Signs and leading zeros are rejected so "01" and "+1" never alias "1".
func sequenceIndex(segment string, length int) (int, bool) {
	if segment == "" || (len(segment) > 1 && segment[0] == '0') {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(segment)
	if err != nil || i >= length {
		return 0, false
	}
	return i, true
}

// flattenMap converts a nested Map to dot-notation leaf paths.
// Sequences are leaves, and so is a mapping that refers back to one of its
// ancestors.
func flattenMap(nested *Map, prefix string) map[string]any {
	flat := make(map[string]any)
	guard := make(cycleGuard)
	if leave, err := guard.enter(reflect.ValueOf(nested)); err == nil {
		defer leave()
	}
	flattenInto(flat, nested, prefix, guard)
	return flat
}

func flattenInto(flat map[string]any, nested *Map, prefix string, guard cycleGuard) {
	nested.Range(func(key string, value any) bool {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		if sub, isMap := value.(*Map); isMap && sub != nil && sub.Len() > 0 {
			if leave, err := guard.enter(reflect.ValueOf(sub)); err == nil {
				flattenInto(flat, sub, newPath, guard)
				leave()
				return true
			}
		}
		flat[newPath] = value
		return true
	})
}

// sortedPaths returns the keys of a flattened map in sorted order.
func sortedPaths(flat map[string]any) []string {
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// setNestedValue sets a value in a nested Map using a dot-notation path.
// Intermediate maps are created when missing; non-map segments are overwritten by a new Map.
func setNestedValue(nested *Map, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, exists := current.Get(segment)
		nextMap, isMap := next.(*Map)
		if !exists || !isMap || nextMap == nil {
			nextMap = NewMap()
			current.Set(segment, nextMap)
		}
		current = nextMap
	}

	current.Set(segments[len(segments)-1], value)
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key part.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
