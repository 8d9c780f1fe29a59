package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "ab", -1},
		{"", "a", -1},
		// U+1F600 encodes as surrogates D83D DE00, which sort below U+FB01.
		{"\U0001F600", "\ufb01", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestIRObjectMergeDoesNotMutate(t *testing.T) {
	base := IRObject{"a": IRInt(1), "b": IRInt(2)}
	over := IRObject{"b": IRInt(20), "c": IRInt(30)}

	merged := base.Merge(over)

	assert.Equal(t, IRObject{"a": IRInt(1), "b": IRInt(20), "c": IRInt(30)}, merged)
	assert.Equal(t, IRObject{"a": IRInt(1), "b": IRInt(2)}, base)
	assert.Equal(t, IRObject{"b": IRInt(20), "c": IRInt(30)}, over)
}

func TestCloneIsDeep(t *testing.T) {
	orig := IRObject{
		"list": IRArray{IRInt(1), IRObject{"k": IRString("v")}},
	}

	cp := orig.Clone()
	cp["list"].(IRArray)[1].(IRObject)["k"] = IRString("changed")

	assert.Equal(t, IRString("v"), orig["list"].(IRArray)[1].(IRObject)["k"])
	assert.Nil(t, IRObject(nil).Clone())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(IRInt(3), IRInt(3)))
	assert.False(t, Equal(IRInt(3), IRString("3")))
	assert.True(t, Equal(IRNull{}, IRNull{}))
	assert.True(t, Equal(
		IRObject{"a": IRArray{IRBool(true)}},
		IRObject{"a": IRArray{IRBool(true)}},
	))
	assert.False(t, Equal(IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(2)}))
	assert.False(t, Equal(IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}))
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"string", IRString("Potion"), "Potion"},
		{"int", IRInt(-12), "-12"},
		{"bool", IRBool(true), "true"},
		{"null", IRNull{}, ""},
		{"array", IRArray{IRInt(1), IRString("a")}, `[1,"a"]`},
		{"object", IRObject{"b": IRInt(2), "a": IRInt(1)}, `{"a":1,"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestFromAny(t *testing.T) {
	got, err := FromAny(map[string]any{
		"name":  "Chest",
		"count": 3,
		"big":   int64(1 << 40),
		"whole": 4.0,
		"open":  false,
		"tags":  []any{"a", uint8(2)},
		"none":  nil,
	})
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"name":  IRString("Chest"),
		"count": IRInt(3),
		"big":   IRInt(1 << 40),
		"whole": IRInt(4),
		"open":  IRBool(false),
		"tags":  IRArray{IRString("a"), IRInt(2)},
		"none":  IRNull{},
	}, got)
}

func TestFromAnyRejectsFractionalFloats(t *testing.T) {
	_, err := FromAny(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = FromAny([]any{1, 2.25})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[1]")
}

func TestFromAnyYAMLStyleMap(t *testing.T) {
	got, err := FromAny(map[any]any{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"k": IRInt(1)}, got)

	_, err = FromAny(map[any]any{1: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys must be strings")
}

func TestFromAnyPassesIRValuesThrough(t *testing.T) {
	v := IRArray{IRInt(1)}
	got, err := FromAny(v)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestToAnyRoundTrip(t *testing.T) {
	v := IRObject{
		"s": IRString("x"),
		"n": IRInt(7),
		"b": IRBool(true),
		"l": IRArray{IRInt(1), IRNull{}},
	}

	back, err := FromAny(ToAny(v))
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestUnmarshalRejectsFloats(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"volume": 90.5}`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestUnmarshalValidJSON(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"code": 101, "parameters": ["", 0, null, true]}`), &obj)
	require.NoError(t, err)

	assert.Equal(t, IRInt(101), obj["code"])
	assert.Equal(t, IRArray{IRString(""), IRInt(0), IRNull{}, IRBool(true)}, obj["parameters"])
}

func TestMarshalIRObjectKeyOrder(t *testing.T) {
	obj := IRObject{"z": IRInt(1), "a": IRInt(2)}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"z":1}`, string(data))
}

func TestMarshalNilArrayAsEmpty(t *testing.T) {
	data, err := json.Marshal(IRArray(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestObjectOf(t *testing.T) {
	obj := ObjectOf(O("name", IRString("Chest")), O("x", IRInt(5)), O("x", IRInt(6)))
	assert.Equal(t, IRObject{"name": IRString("Chest"), "x": IRInt(6)}, obj)
}
