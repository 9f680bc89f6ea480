package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/holiman/uint256"
)

// MaxUint256 is the largest value an IRUint can hold.
var MaxUint256 = IRUint{v: *new(uint256.Int).SetAllOne()}

// ErrNotUint is returned when a value cannot be read as an unsigned integer.
var ErrNotUint = errors.New("not an unsigned integer")

// IRUint represents an unsigned 256-bit integer.
//
// IRUint holds a uint256.Int by value, so it is immutable through its API and
// comparable with ==. The zero value is 0.
type IRUint struct {
	v uint256.Int
}

func (IRUint) irValue() {}

// NewIRUint creates an IRUint from a uint64.
func NewIRUint(n uint64) IRUint {
	return IRUint{v: *uint256.NewInt(n)}
}

// NewIRUintFromBig creates an IRUint from a big.Int.
// Negative values and values above MaxUint256 are rejected.
func NewIRUintFromBig(n *big.Int) (IRUint, error) {
	if n == nil {
		return IRUint{}, nil
	}
	if n.Sign() < 0 {
		return IRUint{}, fmt.Errorf("%w: negative value %s", ErrNotUint, n)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return IRUint{}, fmt.Errorf("%w: %s exceeds uint256", ErrNotUint, n)
	}
	return IRUint{v: *v}, nil
}

// MustIRUint is like ParseUint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustIRUint(v any) IRUint {
	u, err := ParseUint(v)
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUint normalizes v into an IRUint.
//
// Accepted inputs: IRUint, *uint256.Int, every Go integer kind (non-negative),
// *big.Int, json.Number, and strings holding decimal digits or 0x-prefixed hex.
// Floats are rejected even when integral.
func ParseUint(v any) (IRUint, error) {
	switch val := v.(type) {
	case IRUint:
		return val, nil
	case *uint256.Int:
		if val == nil {
			return IRUint{}, nil
		}
		return IRUint{v: *val}, nil
	case *big.Int:
		return NewIRUintFromBig(val)
	case big.Int:
		return NewIRUintFromBig(&val)
	case json.Number:
		return parseUintString(string(val))
	case string:
		return parseUintString(val)
	case float32, float64:
		return IRUint{}, fmt.Errorf("%w: floats are forbidden: %v", ErrNotUint, val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return IRUint{}, fmt.Errorf("%w: negative value %d", ErrNotUint, rv.Int())
		}
		return NewIRUint(uint64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NewIRUint(rv.Uint()), nil
	}
	return IRUint{}, fmt.Errorf("%w: unsupported type %T", ErrNotUint, v)
}

func parseUintString(s string) (IRUint, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return IRUint{}, fmt.Errorf("%w: empty string", ErrNotUint)
	}
	// SetFromDecimal accepts a leading plus.
	if strings.ContainsAny(trimmed, "+-_") {
		return IRUint{}, fmt.Errorf("%w: %q", ErrNotUint, s)
	}

	var u IRUint
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		digits := trimmed[2:]
		if digits == "" {
			return IRUint{}, fmt.Errorf("%w: %q", ErrNotUint, s)
		}
		// SetFromHex rejects leading zeros.
		digits = strings.TrimLeft(digits, "0")
		if digits == "" {
			return IRUint{}, nil
		}
		if err := u.v.SetFromHex("0x" + digits); err != nil {
			return IRUint{}, fmt.Errorf("%w: %q: %v", ErrNotUint, s, err)
		}
		return u, nil
	}

	if err := u.v.SetFromDecimal(trimmed); err != nil {
		return IRUint{}, fmt.Errorf("%w: %q: %v", ErrNotUint, s, err)
	}
	return u, nil
}

// Big returns a fresh big.Int holding the value.
func (u IRUint) Big() *big.Int {
	return u.v.ToBig()
}

// Uint256 returns a copy of the value as a uint256.Int.
func (u IRUint) Uint256() *uint256.Int {
	return u.v.Clone()
}

// IsZero reports whether the value is 0.
func (u IRUint) IsZero() bool {
	return u.v.IsZero()
}

// String returns the decimal representation.
func (u IRUint) String() string {
	return u.v.Dec()
}

// MarshalJSON encodes the value as a bare JSON number. uint256.Int quotes its
// JSON form, which the positional encoding does not allow.
func (u IRUint) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalJSON accepts a JSON number or a string holding decimal or hex digits.
func (u *IRUint) UnmarshalJSON(data []byte) error {
	var raw any
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	} else {
		raw = json.Number(data)
	}

	parsed, err := ParseUint(raw)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
