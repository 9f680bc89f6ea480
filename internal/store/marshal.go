package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gelato/internal/ir"
)

// marshalEncoded converts an encoded receipt to canonical JSON TEXT for storage.
func marshalEncoded(encoded ir.IRArray) (string, error) {
	data, err := ir.MarshalCanonical(encoded)
	if err != nil {
		return "", fmt.Errorf("marshal encoded: %w", err)
	}
	return string(data), nil
}

// unmarshalEncoded parses canonical JSON TEXT back into an IRArray.
// Uses ir.IRArray.UnmarshalJSON, which reads numbers via json.Number so
// uint256 values survive without float64 precision loss.
func unmarshalEncoded(data string) (ir.IRArray, error) {
	if data == "" {
		return nil, fmt.Errorf("unmarshal encoded: empty")
	}
	var arr ir.IRArray
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return nil, fmt.Errorf("unmarshal encoded: %w", err)
	}
	return arr, nil
}

// unmarshalReceiptID parses the decimal TEXT column into an IRUint.
func unmarshalReceiptID(data string) (ir.IRUint, error) {
	id, err := ir.ParseUint(data)
	if err != nil {
		return ir.IRUint{}, fmt.Errorf("unmarshal receipt id: %w", err)
	}
	return id, nil
}
