// FILE: lixenwraith/globalconfig/type.go
package globalconfig

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// String retrieves a string configuration value using the dot-path.
// Attempts conversion from common types if the stored value isn't already a string.
func (s *Store) String(path string) (string, error) {
	val, found := s.Lookup(path)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if val == nil {
		return "", nil // Treat null as empty string for convenience
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert %s value at path %s to string", KindOf(val), path)
	}
}

// Int64 retrieves an int64 configuration value using the dot-path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (s *Store) Int64(path string) (int64, error) {
	val, found := s.Lookup(path)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if val == nil {
		return 0, fmt.Errorf("value for path %s is null, cannot convert to int64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		maxInt64 := int64(^uint64(0) >> 1)
		if u > uint64(maxInt64) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d at path %s to int64: overflow", u, path)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(v.Float()), nil
	case reflect.String:
		// json.Number lands here as well
		str := v.String()
		if i, err := strconv.ParseInt(str, 0, 64); err == nil {
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(str, 64); ferr == nil {
				return int64(f), nil
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", str, path, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert %s value at path %s to int64", KindOf(val), path)
}

// Bool retrieves a boolean configuration value using the dot-path.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (s *Store) Bool(path string) (bool, error) {
	val, found := s.Lookup(path)
	if !found {
		return false, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is null, cannot convert to bool", path)
	}

	if n, ok := val.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return false, fmt.Errorf("cannot convert number %q to bool for path %s: %w", n, path, err)
		}
		return f != 0, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		str := v.String()
		if b, err := strconv.ParseBool(str); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", str, path, err)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert %s value at path %s to bool", KindOf(val), path)
}

// Float64 retrieves a float64 configuration value using the dot-path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (s *Store) Float64(path string) (float64, error) {
	val, found := s.Lookup(path)
	if !found {
		return 0.0, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for path %s is null, cannot convert to float64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		str := v.String()
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", str, path, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert %s value at path %s to float64", KindOf(val), path)
}
