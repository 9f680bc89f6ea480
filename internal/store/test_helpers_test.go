package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/gelato/internal/encode"
	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/testutil"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record for the Scenario A receipt with minimal
// required fields. Hash is left empty for the store to compute.
func createTestRecord(name, network, batchID string) ir.ReceiptRecord {
	r := testutil.ScenarioA()
	return ir.ReceiptRecord{
		Name:      name,
		Network:   network,
		ReceiptID: r.ID,
		UserProxy: string(r.UserProxy),
		Encoded:   encode.Receipt(r),
		BatchID:   batchID,
	}
}

// createCyclingRecord creates a record for the cycling receipt fixture.
func createCyclingRecord(name, network, batchID string) ir.ReceiptRecord {
	r := testutil.CyclingReceipt()
	return ir.ReceiptRecord{
		Name:      name,
		Network:   network,
		ReceiptID: r.ID,
		UserProxy: string(r.UserProxy),
		Encoded:   encode.Receipt(r),
		BatchID:   batchID,
	}
}
