// FILE: lixenwraith/globalconfig/type_test.go
package globalconfig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedGetters(t *testing.T) {
	store := New()
	require.NoError(t, store.Set(NewMap().
		Set("str", "text").
		Set("int", 42).
		Set("uint", uint(7)).
		Set("float", 2.5).
		Set("number", json.Number("12")).
		Set("fraction", json.Number("0.5")).
		Set("boolean", true).
		Set("numeric_string", "0x10").
		Set("bool_string", "false").
		Set("duration", 2*time.Second).
		Set("null", nil).
		Set("list", []any{"a"}).
		Set("nested", NewMap().Set("port", int64(8080)))))

	t.Run("String", func(t *testing.T) {
		tests := map[string]string{
			"str":      "text",
			"int":      "42",
			"uint":     "7",
			"float":    "2.5",
			"number":   "12",
			"boolean":  "true",
			"duration": "2s",
			"null":     "",
		}
		for path, expected := range tests {
			v, err := store.String(path)
			require.NoError(t, err, path)
			assert.Equal(t, expected, v, path)
		}

		_, err := store.String("list")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sequence")
	})

	t.Run("Int64", func(t *testing.T) {
		tests := map[string]int64{
			"int":            42,
			"uint":           7,
			"float":          2,
			"number":         12,
			"fraction":       0,
			"boolean":        1,
			"numeric_string": 16,
			"nested.port":    8080,
		}
		for path, expected := range tests {
			v, err := store.Int64(path)
			require.NoError(t, err, path)
			assert.Equal(t, expected, v, path)
		}

		_, err := store.Int64("str")
		assert.Error(t, err)
		_, err = store.Int64("null")
		assert.Error(t, err)
	})

	t.Run("Bool", func(t *testing.T) {
		tests := map[string]bool{
			"boolean":     true,
			"bool_string": false,
			"int":         true,
			"number":      true,
			"float":       true,
		}
		for path, expected := range tests {
			v, err := store.Bool(path)
			require.NoError(t, err, path)
			assert.Equal(t, expected, v, path)
		}

		_, err := store.Bool("str")
		assert.Error(t, err)
	})

	t.Run("Float64", func(t *testing.T) {
		tests := map[string]float64{
			"float":    2.5,
			"int":      42,
			"uint":     7,
			"number":   12,
			"fraction": 0.5,
			"boolean":  1,
		}
		for path, expected := range tests {
			v, err := store.Float64(path)
			require.NoError(t, err, path)
			assert.Equal(t, expected, v, path)
		}

		_, err := store.Float64("list")
		assert.Error(t, err)
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, err := store.String("missing")
		assert.ErrorIs(t, err, ErrPathNotFound)
		_, err = store.Int64("nested.missing")
		assert.ErrorIs(t, err, ErrPathNotFound)
		_, err = store.Bool("missing")
		assert.ErrorIs(t, err, ErrPathNotFound)
		_, err = store.Float64("missing")
		assert.ErrorIs(t, err, ErrPathNotFound)
	})
}
