package testutil

import "sync"

// FixedBatchIDGenerator returns predetermined batch IDs for testing.
//
// This enables deterministic ledger contents and golden output comparison.
// Once the list is exhausted the last ID is repeated; with no IDs at all,
// Generate returns "test-batch-default".
//
// Thread-safety: FixedBatchIDGenerator is safe for concurrent use via internal mutex.
type FixedBatchIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedBatchIDGenerator creates a generator that returns ids in order.
func NewFixedBatchIDGenerator(ids ...string) *FixedBatchIDGenerator {
	if len(ids) == 0 {
		ids = []string{"test-batch-default"}
	}
	return &FixedBatchIDGenerator{ids: ids}
}

// Generate returns the next predetermined batch ID.
func (g *FixedBatchIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
