package cli

import "github.com/google/uuid"

// BatchIDGenerator produces the identifier shared by every receipt written
// in one record invocation.
//
// Implementations:
//   - UUIDv7Generator: production use, time-sortable
//   - testutil.FixedBatchIDGenerator: deterministic IDs for tests
type BatchIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so batch IDs sort
// by the time they were recorded.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
