package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRString, IRUint, IRBool and IRArray implement this.
// NO floats, NO objects, NO null: the execution contract only accepts
// positional tuples of addresses, bytes, unsigned integers and booleans.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRString represents an address or a hex bytes payload.
type IRString string

func (IRString) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an ordered tuple or list of IRValue elements.
// Element order is load-bearing.
type IRArray []IRValue

func (IRArray) irValue() {}

// NewIRString creates an IRString value.
func NewIRString(s string) IRString {
	return IRString(s)
}

// NewIRBool creates an IRBool value.
func NewIRBool(b bool) IRBool {
	return IRBool(b)
}

// NewIRArray creates an IRArray from values.
func NewIRArray(vals ...IRValue) IRArray {
	return IRArray(vals)
}

// MarshalJSON writes the canonical form, so encoding/json output of an
// encoded receipt hashes the same as MarshalCanonical.
func (arr IRArray) MarshalJSON() ([]byte, error) {
	return appendCanonical(nil, arr)
}

// UnmarshalJSON reads a JSON array back into IR values. Numbers must be
// unsigned integers; floats, objects and null are rejected.
func (arr *IRArray) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalIRValue(data)
	if err != nil {
		return err
	}
	out, ok := v.(IRArray)
	if !ok {
		return fmt.Errorf("encoded receipt must be a JSON array, got %T", v)
	}
	*arr = out
	return nil
}

// UnmarshalIRValue decodes a single JSON value into an IRValue.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return toIRValue(raw)
}
