package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTaskReceipt = "gelato/task-receipt/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ReceiptHash computes the content-addressed identity of an encoded task receipt.
// Two receipts hash equal exactly when their positional encodings are equal.
func ReceiptHash(encoded IRArray) (string, error) {
	canonical, err := MarshalCanonical(encoded)
	if err != nil {
		return "", fmt.Errorf("ReceiptHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTaskReceipt, canonical), nil
}

// MustReceiptHash is like ReceiptHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustReceiptHash(encoded IRArray) string {
	hash, err := ReceiptHash(encoded)
	if err != nil {
		panic(err)
	}
	return hash
}
