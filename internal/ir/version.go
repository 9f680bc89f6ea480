package ir

// Version constants for the encoding and the tool.
const (
	// EncodingVersion is the positional layout version recorded in the ledger.
	EncodingVersion = "1"

	// ToolVersion is the gelato CLI version.
	ToolVersion = "0.1.0"
)
