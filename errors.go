// FILE: lixenwraith/globalconfig/errors.go
package globalconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOption is returned when an option bag holds an unrecognized key.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidOptionType is returned when a recognized option holds a value of the wrong type.
	ErrInvalidOptionType = errors.New("invalid option type")
	// ErrAlreadySet is returned by Set when the store is frozen.
	ErrAlreadySet = errors.New("configuration already set")
	// ErrSerialization is returned when the configuration holds cyclic or unencodable values.
	ErrSerialization = errors.New("configuration serialization failed")

	// ErrPathNotFound is returned by typed getters when a dot-path does not resolve.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotMapping is returned when a dot-path resolves to a value that is not a mapping.
	ErrNotMapping = errors.New("value is not a mapping")
	// ErrConfigNotFound is returned when a configuration file does not exist. It is not fatal to Build.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrCLIParse is returned when command-line arguments cannot be parsed.
	ErrCLIParse = errors.New("failed to parse command-line arguments")
	// ErrUnsupportedFormat is returned for file formats other than toml, json and yaml.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)

// OptionError describes a rejected entry of a Set option bag.
// Err is ErrInvalidOption or ErrInvalidOptionType.
type OptionError struct {
	Option string
	Value  any
	Err    error
}

func (e *OptionError) Error() string {
	if errors.Is(e.Err, ErrInvalidOptionType) {
		return fmt.Sprintf("%v: %q expects bool, got %T", e.Err, e.Option, e.Value)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Option)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}
