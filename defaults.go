// FILE: lixenwraith/globalconfig/defaults.go
package globalconfig

import (
	"fmt"
	"reflect"
	"strings"
)

// FromStruct converts a struct (or pointer to struct) into a Map, using the
// tagName struct tag for keys and falling back to field names. Keys follow field
// declaration order. Nested structs become nested Maps; fields tagged "-",
// unexported fields and nil struct pointers are skipped.
func FromStruct(structWithDefaults any, tagName string) (*Map, error) {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("FromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	if tagName == "" {
		tagName = "toml"
	}

	var errors []string
	m := NewMap()
	structFields(m, v, tagName, "", &errors)

	if len(errors) > 0 {
		return nil, fmt.Errorf("failed to convert %d field(s): %s", len(errors), strings.Join(errors, "; "))
	}

	return m, nil
}

// structFields adds the exported fields of v to m, recursing into nested structs.
func structFields(m *Map, v reflect.Value, tagName, fieldPath string, errors *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		// Get tag value or use field name
		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		if strings.Contains(key, ".") {
			*errors = append(*errors, fmt.Sprintf("field %s%s: key %q contains a dot", fieldPath, field.Name, key))
			continue
		}

		// Handle nested structs recursively
		fieldType := fieldValue.Type()
		isStruct := fieldValue.Kind() == reflect.Struct
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && fieldType.Elem().Kind() == reflect.Struct

		if (isStruct || isPtrToStruct) && !isLeafStruct(fieldType) {
			nestedValue := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					continue
				}
				nestedValue = fieldValue.Elem()
			}

			nested := NewMap()
			structFields(nested, nestedValue, tagName, fieldPath+field.Name+".", errors)
			m.Set(key, nested)
			continue
		}

		m.Set(key, Normalize(fieldValue.Interface()))
	}
}

// isLeafStruct reports struct types stored as values rather than expanded,
// such as time.Time and url.URL.
func isLeafStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, iface := range []reflect.Type{textMarshalerType, jsonMarshalerType} {
		if t.Implements(iface) || reflect.PointerTo(t).Implements(iface) {
			return true
		}
	}
	return false
}
