// FILE: lixenwraith/globalconfig/value_test.go
package globalconfig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	var nilMap *Map
	var nilPtr *int
	n := 5

	tests := []struct {
		name  string
		value any
		kind  Kind
	}{
		{"Nil", nil, KindNull},
		{"NilMap", nilMap, KindNull},
		{"NilPointer", nilPtr, KindNull},
		{"Bool", true, KindBool},
		{"Int", 3, KindNumber},
		{"Uint8", uint8(3), KindNumber},
		{"Float", 1.5, KindNumber},
		{"JSONNumber", json.Number("12"), KindNumber},
		{"Duration", 3 * time.Second, KindNumber},
		{"String", "s", KindString},
		{"Map", NewMap(), KindMapping},
		{"GoMap", map[string]any{}, KindMapping},
		{"TypedGoMap", map[string]int{}, KindMapping},
		{"IntKeyedMap", map[int]any{}, KindInvalid},
		{"Sequence", []any{}, KindSequence},
		{"TypedSlice", []string{"a"}, KindSequence},
		{"Array", [2]int{1, 2}, KindSequence},
		{"PointerToInt", &n, KindNumber},
		{"Func", func() {}, KindInvalid},
		{"Struct", struct{}{}, KindInvalid},
		{"Channel", make(chan int), KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.value))
		})
	}

	assert.Equal(t, "mapping", KindMapping.String())
	assert.Equal(t, "invalid", Kind(99).String())
}

func TestMapOrdering(t *testing.T) {
	t.Run("InsertionOrder", func(t *testing.T) {
		m := NewMap().Set("z", 1).Set("a", 2).Set("m", 3)
		assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
		assert.Equal(t, 3, m.Len())
	})

	t.Run("OverwriteKeepsPosition", func(t *testing.T) {
		m := NewMap().Set("first", 1).Set("second", 2).Set("first", 10)
		assert.Equal(t, []string{"first", "second"}, m.Keys())
		v, ok := m.Get("first")
		assert.True(t, ok)
		assert.Equal(t, 10, v)
	})

	t.Run("Delete", func(t *testing.T) {
		m := NewMap().Set("a", 1).Set("b", 2).Set("c", 3)
		m.Delete("b")
		m.Delete("missing")
		assert.Equal(t, []string{"a", "c"}, m.Keys())
		_, ok := m.Get("b")
		assert.False(t, ok)

		m.Set("b", 4)
		assert.Equal(t, []string{"a", "c", "b"}, m.Keys())
	})

	t.Run("ZeroValueUsable", func(t *testing.T) {
		var m Map
		assert.Equal(t, 0, m.Len())
		m.Set("k", "v")
		assert.Equal(t, []string{"k"}, m.Keys())
	})

	t.Run("NilMapReads", func(t *testing.T) {
		var m *Map
		assert.Equal(t, 0, m.Len())
		assert.Nil(t, m.Keys())
		_, ok := m.Get("k")
		assert.False(t, ok)
		m.Range(func(string, any) bool {
			t.Fatal("range over nil map")
			return false
		})
	})

	t.Run("KeysIsCopy", func(t *testing.T) {
		m := NewMap().Set("a", 1)
		keys := m.Keys()
		keys[0] = "mutated"
		assert.Equal(t, []string{"a"}, m.Keys())
	})

	t.Run("RangeStops", func(t *testing.T) {
		m := NewMap().Set("a", 1).Set("b", 2).Set("c", 3)
		var seen []string
		m.Range(func(k string, _ any) bool {
			seen = append(seen, k)
			return k != "b"
		})
		assert.Equal(t, []string{"a", "b"}, seen)
	})
}

func TestMapMerge(t *testing.T) {
	shared := NewMap().Set("x", 1)
	base := NewMap().Set("a", 1).Set("nested", NewMap().Set("y", 2))
	other := NewMap().Set("nested", shared).Set("b", 2)

	merged := base.Merge(other)
	assert.Equal(t, []string{"a", "nested", "b"}, merged.Keys())
	nested, _ := merged.Get("nested")
	assert.Same(t, shared, nested)

	// Inputs are untouched
	assert.Equal(t, []string{"a", "nested"}, base.Keys())
	assert.Equal(t, []string{"nested", "b"}, other.Keys())

	var empty *Map
	assert.Equal(t, []string{"nested", "b"}, empty.Merge(other).Keys())
}

func TestMapConversions(t *testing.T) {
	t.Run("FromMapSortsKeys", func(t *testing.T) {
		m := FromMap(map[string]any{
			"b": 1,
			"a": map[string]any{"d": 1, "c": []any{map[string]any{"y": 1, "x": 2}}},
		})
		assert.Equal(t, []string{"a", "b"}, m.Keys())

		a, _ := m.Get("a")
		require.IsType(t, &Map{}, a)
		assert.Equal(t, []string{"c", "d"}, a.(*Map).Keys())

		c, _ := a.(*Map).Get("c")
		inner := c.([]any)[0]
		require.IsType(t, &Map{}, inner)
		assert.Equal(t, []string{"x", "y"}, inner.(*Map).Keys())
	})

	t.Run("NormalizeTypedContainers", func(t *testing.T) {
		v := Normalize(map[string]int{"b": 2, "a": 1})
		require.IsType(t, &Map{}, v)
		assert.Equal(t, []string{"a", "b"}, v.(*Map).Keys())

		assert.Equal(t, []any{"x", "y"}, Normalize([]string{"x", "y"}))
		assert.Equal(t, []any{1, 2}, Normalize([2]int{1, 2}))
		assert.Equal(t, []byte("raw"), Normalize([]byte("raw")))
		assert.Equal(t, 42, Normalize(42))
	})

	t.Run("ToMapRoundTrip", func(t *testing.T) {
		m := NewMap().
			Set("server", NewMap().Set("host", "localhost").Set("port", 8080)).
			Set("tags", []any{"a", NewMap().Set("k", "v")})

		expected := map[string]any{
			"server": map[string]any{"host": "localhost", "port": 8080},
			"tags":   []any{"a", map[string]any{"k": "v"}},
		}
		if diff := cmp.Diff(expected, m.ToMap()); diff != "" {
			t.Errorf("ToMap mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("DeepCopyIsIndependent", func(t *testing.T) {
		inner := NewMap().Set("k", "v")
		list := []any{inner}
		m := NewMap().Set("inner", inner).Set("list", list)

		copied, err := deepCopy(m)
		require.NoError(t, err)
		cp := copied.(*Map)
		inner.Set("k", "changed")
		list[0] = "replaced"

		v, _ := cp.Get("inner")
		got, _ := v.(*Map).Get("k")
		assert.Equal(t, "v", got)

		l, _ := cp.Get("list")
		assert.IsType(t, &Map{}, l.([]any)[0])
	})

	t.Run("DeepCopyCycle", func(t *testing.T) {
		m := NewMap()
		m.Set("nested", map[string]any{"back": m})
		_, err := deepCopy(m)
		assert.ErrorIs(t, err, ErrSerialization)

		shared := []any{1}
		copied, err := deepCopy(NewMap().Set("a", shared).Set("b", shared))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, copied.(*Map).Keys())
	})
}
