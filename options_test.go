// FILE: lixenwraith/globalconfig/options_test.go
package globalconfig

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		expected    Options
		expectedErr error
		errorOption string
	}{
		{"NilBag", nil, Options{Freeze: true}, nil, ""},
		{"EmptyBag", map[string]any{}, Options{Freeze: true}, nil, ""},
		{"FreezeFalse", map[string]any{"freeze": false}, Options{Freeze: false}, nil, ""},
		{"AssignTrue", map[string]any{"assign": true}, Options{Freeze: true, Assign: true}, nil, ""},
		{"Both", map[string]any{"freeze": false, "assign": true}, Options{Assign: true}, nil, ""},
		{"UnknownKey", map[string]any{"badOption": false}, Options{}, ErrInvalidOption, "badOption"},
		{"StringBool", map[string]any{"assign": "true"}, Options{}, ErrInvalidOptionType, "assign"},
		{"NumericBool", map[string]any{"freeze": 0}, Options{}, ErrInvalidOptionType, "freeze"},
		{"NilValue", map[string]any{"freeze": nil}, Options{}, ErrInvalidOptionType, "freeze"},
		{"CaseSensitive", map[string]any{"Freeze": true}, Options{}, ErrInvalidOption, "Freeze"},
		// Keys are checked in sorted order
		{"FirstSortedKeyReported", map[string]any{"zeta": true, "assign": 1}, Options{}, ErrInvalidOptionType, "assign"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ValidateOptions(tt.raw)
			if tt.expectedErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, opts)
				return
			}

			assert.ErrorIs(t, err, tt.expectedErr)
			var optErr *OptionError
			require.True(t, errors.As(err, &optErr))
			assert.Equal(t, tt.errorOption, optErr.Option)
			assert.Equal(t, tt.raw[tt.errorOption], optErr.Value)
		})
	}
}

// Every accepted key must land on an Options field, since the decode does
// not report unused keys
func TestOptionKeysMatchFields(t *testing.T) {
	optType := reflect.TypeOf(Options{})
	tags := make(map[string]struct{}, optType.NumField())
	for i := 0; i < optType.NumField(); i++ {
		tags[optType.Field(i).Tag.Get("option")] = struct{}{}
	}
	assert.Equal(t, optionTypes, tags)

	for key := range optionTypes {
		on, err := ValidateOptions(map[string]any{key: true})
		require.NoError(t, err, key)
		off, err := ValidateOptions(map[string]any{key: false})
		require.NoError(t, err, key)
		assert.NotEqual(t, on, off, "option %s was not applied", key)
	}
}

func TestOptionFuncs(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, Options{Freeze: true}, opts)

	Assign(true)(&opts)
	Freeze(false)(&opts)
	assert.Equal(t, Options{Assign: true}, opts)

	WithOptions(Options{Freeze: true})(&opts)
	assert.Equal(t, Options{Freeze: true}, opts)
}

func TestOptionErrorMessages(t *testing.T) {
	err := &OptionError{Option: "badOption", Value: false, Err: ErrInvalidOption}
	assert.Equal(t, `invalid option: "badOption"`, err.Error())

	err = &OptionError{Option: "freeze", Value: "yes", Err: ErrInvalidOptionType}
	assert.Equal(t, `invalid option type: "freeze" expects bool, got string`, err.Error())
}
