// FILE: lixenwraith/globalconfig/decode.go
package globalconfig

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Scan decodes the mapping at a dot-path into target, which must be a non-nil
// pointer to a struct or map. An empty path decodes the whole configuration and
// a path that does not resolve decodes as an empty mapping, leaving struct
// fields unchanged. Fields are matched by the store's tag name ("toml" unless
// changed with WithTagName).
func (s *Store) Scan(path string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	s.mutex.RLock()
	section, found := s.lookup(path)
	tagName := s.tagName
	s.mutex.RUnlock()

	if !found || section == nil {
		section = NewMap()
	}
	if KindOf(section) != KindMapping {
		return fmt.Errorf("%w: path %q holds %s", ErrNotMapping, path, KindOf(section))
	}
	if err := checkAcyclic(section); err != nil {
		return err
	}

	if err := decodeValue(section, target, tagName); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", path, err)
	}

	return nil
}

// decodeValue converts input into plain Go maps and slices and decodes it into target.
func decodeValue(input any, target any, tagName string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       getDecodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	return decoder.Decode(plainValue(input))
}

// GetTyped retrieves the value at path converted to T with the same rules as Scan
func GetTyped[T any](s *Store, path string) (T, error) {
	var result T

	s.mutex.RLock()
	val, found := s.lookup(path)
	tagName := s.tagName
	s.mutex.RUnlock()

	if !found {
		return result, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if err := checkAcyclic(val); err != nil {
		return result, err
	}
	if err := decodeValue(val, &result, tagName); err != nil {
		return result, fmt.Errorf("cannot convert value at path %s to %T: %w", path, result, err)
	}
	return result, nil
}

// ScanTyped decodes the mapping at path into a new T
func ScanTyped[T any](s *Store, path string) (*T, error) {
	var target T
	if err := s.Scan(path, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// getDecodeHook returns the composite decode hook for all type conversions
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		jsonNumberHookFunc(),

		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// jsonNumberHookFunc turns json.Number from ParseJSON into int64 or float64
// so numeric targets decode without weak string parsing.
func jsonNumberHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != jsonNumberType {
			return data, nil
		}

		n := data.(json.Number)
		switch t.Kind() {
		case reflect.String:
			return n.String(), nil
		case reflect.Float32, reflect.Float64:
			return n.Float64()
		}
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		return n.Float64()
	}
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}

		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}
