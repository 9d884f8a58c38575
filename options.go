// FILE: lixenwraith/globalconfig/options.go
package globalconfig

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Option names accepted in a Set option bag.
const (
	OptionFreeze = "freeze"
	OptionAssign = "assign"
)

// Options controls a single Set call.
type Options struct {
	// Freeze locks the store after this call so further Set calls fail. Default: true.
	Freeze bool `option:"freeze"`
	// Assign shallow-merges the new configuration into the current one instead of replacing it. Default: false.
	Assign bool `option:"assign"`
}

// DefaultOptions returns the options applied when Set receives none.
func DefaultOptions() Options {
	return Options{Freeze: true}
}

// Option adjusts Options for a Set call.
type Option func(*Options)

// Freeze sets whether the store is locked after the Set call.
func Freeze(freeze bool) Option {
	return func(o *Options) { o.Freeze = freeze }
}

// Assign sets whether the Set call merges into the current configuration.
func Assign(assign bool) Option {
	return func(o *Options) { o.Assign = assign }
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// optionTypes enumerates the legal option keys.
var optionTypes = map[string]struct{}{
	OptionFreeze: {},
	OptionAssign: {},
}

// ValidateOptions checks an option bag and returns it with defaults filled in.
// A nil bag is treated as empty. Unknown keys fail with ErrInvalidOption and
// non-bool values with ErrInvalidOptionType, both wrapped in *OptionError.
func ValidateOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(raw) == 0 {
		return opts, nil
	}

	// Sorted so the reported key does not depend on map iteration order
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, known := optionTypes[key]; !known {
			return Options{}, &OptionError{Option: key, Value: raw[key], Err: ErrInvalidOption}
		}
		if _, ok := raw[key].(bool); !ok {
			return Options{}, &OptionError{Option: key, Value: raw[key], Err: ErrInvalidOptionType}
		}
	}

	// Keys and value types are checked above, so the decode only maps option
	// tags onto fields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &opts,
		TagName: "option",
	})
	if err != nil {
		return Options{}, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("failed to decode options: %w", err)
	}

	return opts, nil
}
