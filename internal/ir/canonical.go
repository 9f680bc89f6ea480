package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON of an encoded receipt (or any
// part of one). It is the only serialization used for ReceiptHash, golden
// files and the ledger's encoded column.
//
// The output has no insignificant whitespace, NFC-normalized strings, no HTML
// escaping, and unsigned integers as bare decimal digits of any length.
// Floats, objects and null are rejected.
//
// v may be an IRValue or a plain Go string, bool, uint64, json.Number or
// []any built from those.
func MarshalCanonical(v any) ([]byte, error) {
	irv, err := toIRValue(v)
	if err != nil {
		return nil, err
	}
	return appendCanonical(nil, irv)
}

// toIRValue converts plain Go and decoded JSON values into IR values.
func toIRValue(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case uint64:
		return NewIRUint(val), nil
	case json.Number:
		return ParseUint(val)
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden: %v", val)
	case map[string]any:
		return nil, fmt.Errorf("objects are forbidden: the contract layout is positional")
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := toIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func appendCanonical(dst []byte, v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case IRString:
		return appendCanonicalString(dst, string(val)), nil
	case IRUint:
		return append(dst, val.String()...), nil
	case IRBool:
		return strconv.AppendBool(dst, bool(val)), nil
	case IRArray:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendCanonical(dst, elem); err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		return append(dst, ']'), nil
	default:
		return nil, fmt.Errorf("unsupported IR value: %T", v)
	}
}

const hexDigits = "0123456789abcdef"

// appendCanonicalString writes s as a JSON string after NFC normalization.
// Only quote, backslash and C0 controls are escaped; <, >, &, U+2028 and
// U+2029 stay literal. Invalid UTF-8 becomes U+FFFD.
func appendCanonicalString(dst []byte, s string) []byte {
	s = norm.NFC.String(s)

	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				dst = append(dst, "\ufffd"...)
			} else {
				dst = append(dst, s[i:i+size]...)
			}
			i += size
			continue
		}

		switch c {
		case '"':
			dst = append(dst, `\"`...)
		case '\\':
			dst = append(dst, `\\`...)
		case '\b':
			dst = append(dst, `\b`...)
		case '\f':
			dst = append(dst, `\f`...)
		case '\n':
			dst = append(dst, `\n`...)
		case '\r':
			dst = append(dst, `\r`...)
		case '\t':
			dst = append(dst, `\t`...)
		default:
			if c < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			} else {
				dst = append(dst, c)
			}
		}
		i++
	}
	return append(dst, '"')
}
