package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealedInterface(t *testing.T) {
	values := []IRValue{
		IRString("0x"),
		IRUint{},
		IRBool(true),
		IRArray{},
	}
	assert.Len(t, values, 4)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, IRString("0xAA"), NewIRString("0xAA"))
	assert.Equal(t, IRBool(true), NewIRBool(true))
	assert.Equal(t, IRArray{IRString("a"), IRBool(false)}, NewIRArray(IRString("a"), IRBool(false)))
}

func TestIRArrayUnmarshalRoundTrip(t *testing.T) {
	original := scenarioAEncoding()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded IRArray
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestIRArrayUnmarshalLargeUint(t *testing.T) {
	// Larger than 2^53: must not lose precision through float64
	var arr IRArray
	require.NoError(t, json.Unmarshal([]byte(`[9007199254740993]`), &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, MustIRUint("9007199254740993"), arr[0])
}

func TestIRArrayUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"float", `[1.5]`},
		{"negative", `[-1]`},
		{"exponent", `[1e3]`},
		{"null", `[null]`},
		{"object", `[{"a":1}]`},
		{"not an array", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var arr IRArray
			assert.Error(t, json.Unmarshal([]byte(tt.input), &arr))
		})
	}
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`"0xAA"`))
	require.NoError(t, err)
	assert.Equal(t, IRString("0xAA"), v)

	v, err = UnmarshalIRValue([]byte(`true`))
	require.NoError(t, err)
	assert.Equal(t, IRBool(true), v)

	v, err = UnmarshalIRValue([]byte(`12`))
	require.NoError(t, err)
	assert.Equal(t, NewIRUint(12), v)

	v, err = UnmarshalIRValue([]byte(`[1,["x"]]`))
	require.NoError(t, err)
	assert.Equal(t, IRArray{NewIRUint(1), IRArray{IRString("x")}}, v)

	_, err = UnmarshalIRValue([]byte(`null`))
	assert.Error(t, err)
}
