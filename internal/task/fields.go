package task

import (
	"reflect"
	"strings"
)

// Fields is the untyped form of a receipt definition: nested string-keyed
// maps and slices, as produced by CUE, YAML or JSON decoding.
//
// Expected layout:
//
//	{
//	  "id": 0,                  // optional
//	  "userProxy": "0x...",
//	  "task": {
//	    "base":  {provider, conditions, actions, expiryDate, autoResubmitSelf},
//	    "next":  0,              // optional
//	    "cycle": [ {...}, ... ], // optional
//	  },
//	}
type Fields map[string]any

// present returns m[key] when the key exists with a non-nil value.
func present(m map[string]any, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// asMapping reports whether v is a string-keyed map and returns it as
// map[string]any.
func asMapping(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Fields:
		return val, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSequence reports whether v is a list and returns its elements.
// Strings and byte slices are scalars, not sequences.
func asSequence(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asString reports whether v is a string (or a named string type like Address).
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// nonEmptyString returns the trimmed string value of m[key] if it is a
// non-empty string.
func nonEmptyString(m map[string]any, key string) (string, bool) {
	v, ok := present(m, key)
	if !ok {
		return "", false
	}
	s, ok := asString(v)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
