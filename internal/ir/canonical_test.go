package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"address", IRString("0x7C3Ed90f87B7307E68FDf151D59dBc4e1211aa38"), `"0x7C3Ed90f87B7307E68FDf151D59dBc4e1211aa38"`},
		{"uint", NewIRUint(42), "42"},
		{"zero", IRUint{}, "0"},
		{"max uint64", NewIRUint(18446744073709551615), "18446744073709551615"},
		{"bool true", IRBool(true), "true"},
		{"bool false", IRBool(false), "false"},
		{"empty array", IRArray{}, "[]"},
		{"nil array", IRArray(nil), "[]"},
		{"array of uints", IRArray{NewIRUint(1), NewIRUint(2), NewIRUint(3)}, "[1,2,3]"},
		{"nested arrays", IRArray{IRArray{}, IRArray{IRBool(true)}}, "[[],[true]]"},
		{"go string", "0x", `"0x"`},
		{"go bool", true, "true"},
		{"go uint64", uint64(7), "7"},
		{"go slice", []any{"a", uint64(1), false}, `["a",1,false]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalLargeUint(t *testing.T) {
	result, err := MarshalCanonical(MustIRUint(MaxUint256))
	require.NoError(t, err)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457584007913129639935", string(result))
}

func TestMarshalCanonicalScenarioA(t *testing.T) {
	result, err := MarshalCanonical(scenarioAEncoding())
	require.NoError(t, err)
	assert.Equal(t, `[0,"0xAA",[[["0xBB","0x0"],[],[["0xCC","0x",0,0,false]],0,false],0,[]]]`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("<a>&</a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(result))
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"line separator kept literal", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator kept literal", "a\u2029b", "\"a\u2029b\""},
		{"escaped backslash before u2028 text", `a\u2028`, `"a\\u2028"`},
		{"tab", "a\tb", `"a\tb"`},
		{"other control", "a\x01b", `"a\u0001b"`},
		{"unit separator", "\x1f", `"\u001f"`},
		{"invalid utf8", "a\xffb", "\"a\ufffdb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form
	decomposed := "e\u0301"
	composed := "\u00e9"

	r1, err := MarshalCanonical(IRString(decomposed))
	require.NoError(t, err)
	r2, err := MarshalCanonical(IRString(composed))
	require.NoError(t, err)
	assert.Equal(t, r2, r1)
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		msg   string
	}{
		{"nil", nil, "null is forbidden"},
		{"float64", 1.5, "floats are forbidden"},
		{"float32", float32(1), "floats are forbidden"},
		{"map", map[string]any{"a": 1}, "objects are forbidden"},
		{"int", 5, "unsupported type"},
		{"nested nil", IRArray{IRString("a"), nil}, "array[1]"},
		{"float in slice", []any{1.0}, "floats are forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestIRArrayMarshalJSONMatchesCanonical(t *testing.T) {
	arr := scenarioAEncoding()

	viaJSON, err := arr.MarshalJSON()
	require.NoError(t, err)
	canonical, err := MarshalCanonical(arr)
	require.NoError(t, err)
	assert.Equal(t, canonical, viaJSON)
}
