package ir

// NOTE: These are store-layer types, not part of the contract encoding.

// ReceiptRecord is one entry of the local receipt ledger.
type ReceiptRecord struct {
	Hash            string  `json:"hash"` // ReceiptHash of Encoded
	Name            string  `json:"name"` // Definition label, e.g. "kyberRebalance"
	Network         string  `json:"network"`
	ReceiptID       IRUint  `json:"receipt_id"`
	UserProxy       string  `json:"user_proxy"`
	Encoded         IRArray `json:"encoded"`
	BatchID         string  `json:"batch_id"`
	Seq             int64   `json:"seq"` // Logical clock, assigned by the store
	EncodingVersion string  `json:"encoding_version"`
}
