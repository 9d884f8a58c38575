// FILE: lixenwraith/globalconfig/encode_test.go
package globalconfig

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"Null", nil, `null`},
		{"NilMap", (*Map)(nil), `null`},
		{"EmptyMap", NewMap(), `{}`},
		{"OrderedMap", NewMap().Set("z", 1).Set("a", 2), `{"z":1,"a":2}`},
		{"GoMapSorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"TypedGoMap", map[string]string{"k": "v"}, `{"k":"v"}`},
		{"Sequence", []any{1, "two", true, nil}, `[1,"two",true,null]`},
		{"EmptySequence", []any{}, `[]`},
		{"NilSequence", []any(nil), `null`},
		{"TypedSlice", []int{1, 2}, `[1,2]`},
		{"Array", [2]string{"a", "b"}, `["a","b"]`},
		{"NoHTMLEscape", "<a&b>", `"<a&b>"`},
		{"JSONNumberVerbatim", json.Number("1.50"), `1.50`},
		{"Float", 2.5, `2.5`},
		{"Duration", 2 * time.Second, `2000000000`},
		{"PointerToMap", &map[string]any{"k": 1}, `{"k":1}`},
		{"NestedMixed", NewMap().Set("list", []any{NewMap().Set("b", 1).Set("a", 2)}), `{"list":[{"b":1,"a":2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeJSON(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestEncodeJSONLeafMarshalers(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	out, err := EncodeJSON(NewMap().Set("at", ts).Set("ptr", &ts))
	require.NoError(t, err)
	assert.Equal(t, `{"at":"2024-01-02T03:04:05Z","ptr":"2024-01-02T03:04:05Z"}`, string(out))
}

func TestEncodeJSONFailures(t *testing.T) {
	t.Run("SelfReferencingMap", func(t *testing.T) {
		m := NewMap()
		m.Set("self", m)
		_, err := EncodeJSON(m)
		assert.ErrorIs(t, err, ErrSerialization)
		assert.Contains(t, err.Error(), "cyclic")
	})

	t.Run("IndirectCycle", func(t *testing.T) {
		a := NewMap()
		b := NewMap().Set("back", []any{a})
		a.Set("b", b)
		_, err := EncodeJSON(NewMap().Set("root", a))
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("SelfReferencingSequence", func(t *testing.T) {
		s := make([]any, 1)
		s[0] = s
		_, err := EncodeJSON(s)
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("SelfReferencingGoMap", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m
		_, err := EncodeJSON(m)
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("NaN", func(t *testing.T) {
		_, err := EncodeJSON(NewMap().Set("nan", math.NaN()))
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("Func", func(t *testing.T) {
		_, err := EncodeJSON(NewMap().Set("fn", func() {}))
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("Channel", func(t *testing.T) {
		_, err := EncodeJSON([]any{make(chan int)})
		assert.ErrorIs(t, err, ErrSerialization)
	})
}

type mapHolder struct {
	Name string
	M    *Map
}

func TestEncodeCycleThroughStruct(t *testing.T) {
	t.Run("StructValue", func(t *testing.T) {
		m := NewMap().Set("name", "loop")
		m.Set("holder", mapHolder{Name: "h", M: m})

		store := New()
		require.NoError(t, store.Set(m))
		_, err := store.Serialize()
		assert.ErrorIs(t, err, ErrSerialization)
		assert.Contains(t, err.Error(), "cyclic")
	})

	t.Run("StructPointer", func(t *testing.T) {
		m := NewMap()
		m.Set("list", []any{&mapHolder{M: m}})
		_, err := EncodeJSON(m)
		assert.ErrorIs(t, err, ErrSerialization)
	})

	t.Run("OtherFormats", func(t *testing.T) {
		m := NewMap()
		m.Set("holder", mapHolder{M: m})
		store := New()
		require.NoError(t, store.Set(m))

		for _, format := range []Format{FormatYAML, FormatTOML} {
			_, err := store.SerializeAs(format)
			assert.ErrorIs(t, err, ErrSerialization, "format %s", format)
		}
		_, err := m.MarshalYAML()
		assert.ErrorIs(t, err, ErrSerialization)
		assert.ErrorIs(t, checkAcyclic(m), ErrSerialization)
	})

	t.Run("AcyclicStructLeaf", func(t *testing.T) {
		inner := NewMap().Set("x", 1)
		out, err := EncodeJSON(NewMap().Set("holder", mapHolder{Name: "h", M: inner}).Set("again", inner))
		require.NoError(t, err)
		assert.Equal(t, `{"holder":{"Name":"h","M":{"x":1}},"again":{"x":1}}`, string(out))
	})
}

func TestEncodeSharedIsNotCycle(t *testing.T) {
	shared := NewMap().Set("x", 1)
	list := []any{"a"}
	m := NewMap().Set("a", shared).Set("b", shared).Set("l1", list).Set("l2", list)

	out, err := EncodeJSON(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"x":1},"b":{"x":1},"l1":["a"],"l2":["a"]}`, string(out))
	assert.NoError(t, checkAcyclic(m))
}

func TestCheckAcyclic(t *testing.T) {
	assert.NoError(t, checkAcyclic(nil))
	assert.NoError(t, checkAcyclic(NewMap().Set("a", []any{map[string]any{"b": 1}})))

	m := NewMap()
	m.Set("list", []any{m})
	assert.ErrorIs(t, checkAcyclic(m), ErrSerialization)
}

func TestMapMarshalJSON(t *testing.T) {
	m := NewMap().Set("b", 1).Set("a", NewMap().Set("d", 1).Set("c", 2))

	out, err := json.Marshal(struct {
		Config *Map `json:"config"`
	}{m})
	require.NoError(t, err)
	assert.Equal(t, `{"config":{"b":1,"a":{"d":1,"c":2}}}`, string(out))
}
