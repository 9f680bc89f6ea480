package store

import (
	"testing"

	"github.com/roach88/gelato/internal/ir"
)

func TestMarshalEncoded_Scenario(t *testing.T) {
	rec := createTestRecord("a", "kovan", "b1")
	json, err := marshalEncoded(rec.Encoded)
	if err != nil {
		t.Fatalf("marshalEncoded() failed: %v", err)
	}

	expected := `[0,"0xAA",[[["0xBB","0x0"],[],[["0xCC","0x",0,0,false]],0,false],0,[]]]`
	if json != expected {
		t.Errorf("marshalEncoded() = %q, want %q", json, expected)
	}
}

func TestMarshalEncoded_RejectsNil(t *testing.T) {
	_, err := marshalEncoded(ir.IRArray{nil})
	if err == nil {
		t.Error("expected error for null element")
	}
}

func TestUnmarshalEncoded_RoundTrip(t *testing.T) {
	rec := createCyclingRecord("c", "kovan", "b1")
	json, err := marshalEncoded(rec.Encoded)
	if err != nil {
		t.Fatalf("marshalEncoded() failed: %v", err)
	}

	got, err := unmarshalEncoded(json)
	if err != nil {
		t.Fatalf("unmarshalEncoded() failed: %v", err)
	}

	again, err := marshalEncoded(got)
	if err != nil {
		t.Fatalf("marshalEncoded() second pass failed: %v", err)
	}
	if again != json {
		t.Errorf("round trip changed encoding:\n got %s\nwant %s", again, json)
	}
}

func TestUnmarshalEncoded_LargeValuesPreserved(t *testing.T) {
	// 2^256-1 must survive without float64 precision loss
	maxValue := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	got, err := unmarshalEncoded(`[` + maxValue + `]`)
	if err != nil {
		t.Fatalf("unmarshalEncoded() failed: %v", err)
	}
	u, ok := got[0].(ir.IRUint)
	if !ok {
		t.Fatalf("element type = %T, want ir.IRUint", got[0])
	}
	if u.String() != maxValue {
		t.Errorf("value = %s, want %s", u, maxValue)
	}
}

func TestUnmarshalEncoded_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"object", `{"a":1}`},
		{"float", `[1.5]`},
		{"null element", `[null]`},
		{"negative", `[-1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := unmarshalEncoded(tt.data); err == nil {
				t.Errorf("unmarshalEncoded(%q) should fail", tt.data)
			}
		})
	}
}

func TestUnmarshalReceiptID(t *testing.T) {
	id, err := unmarshalReceiptID("42")
	if err != nil {
		t.Fatalf("unmarshalReceiptID() failed: %v", err)
	}
	if id != ir.NewIRUint(42) {
		t.Errorf("id = %s, want 42", id)
	}

	if _, err := unmarshalReceiptID("forty-two"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
