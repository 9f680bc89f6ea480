package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/gelato/internal/ir"
)

func TestReadReceipt_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createCyclingRecord("rebalance", "kovan", "batch-1")
	seq, _, err := s.WriteReceipt(ctx, rec)
	if err != nil {
		t.Fatalf("WriteReceipt() failed: %v", err)
	}

	hash := ir.MustReceiptHash(rec.Encoded)
	got, err := s.ReadReceipt(ctx, "kovan", hash)
	if err != nil {
		t.Fatalf("ReadReceipt() failed: %v", err)
	}

	if got.Hash != hash {
		t.Errorf("Hash = %q, want %q", got.Hash, hash)
	}
	if got.Name != "rebalance" || got.Network != "kovan" || got.BatchID != "batch-1" {
		t.Errorf("labels = %q/%q/%q", got.Name, got.Network, got.BatchID)
	}
	if got.ReceiptID != ir.NewIRUint(7) {
		t.Errorf("ReceiptID = %s, want 7", got.ReceiptID)
	}
	if got.UserProxy != rec.UserProxy {
		t.Errorf("UserProxy = %q, want %q", got.UserProxy, rec.UserProxy)
	}
	if got.Seq != seq {
		t.Errorf("Seq = %d, want %d", got.Seq, seq)
	}
	if got.EncodingVersion != ir.EncodingVersion {
		t.Errorf("EncodingVersion = %q", got.EncodingVersion)
	}

	// Encoded array must hash identically after the round trip
	if rehash := ir.MustReceiptHash(got.Encoded); rehash != hash {
		t.Errorf("rehash = %q, want %q", rehash, hash)
	}
}

func TestReadReceipt_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadReceipt(context.Background(), "kovan", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListReceipts_FilterAndOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	writes := []ir.ReceiptRecord{
		createCyclingRecord("c", "kovan", "b1"),
		createTestRecord("a", "localhost", "b1"),
		createTestRecord("a", "kovan", "b2"),
	}
	for _, rec := range writes {
		if _, _, err := s.WriteReceipt(ctx, rec); err != nil {
			t.Fatalf("WriteReceipt() failed: %v", err)
		}
	}

	kovan, err := s.ListReceipts(ctx, "kovan")
	if err != nil {
		t.Fatalf("ListReceipts(kovan) failed: %v", err)
	}
	if len(kovan) != 2 {
		t.Fatalf("kovan receipts = %d, want 2", len(kovan))
	}
	if kovan[0].Name != "c" || kovan[1].Name != "a" {
		t.Errorf("kovan order = %q, %q; want c, a", kovan[0].Name, kovan[1].Name)
	}
	if kovan[0].Seq >= kovan[1].Seq {
		t.Errorf("seq not ascending: %d, %d", kovan[0].Seq, kovan[1].Seq)
	}

	all, err := s.ListReceipts(ctx, "")
	if err != nil {
		t.Fatalf("ListReceipts(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all receipts = %d, want 3", len(all))
	}
}

func TestListReceipts_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ListReceipts(context.Background(), "kovan")
	if err != nil {
		t.Fatalf("ListReceipts() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListReceipts() = %v, want empty non-nil slice", got)
	}
}

func TestListBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, rec := range []ir.ReceiptRecord{
		createTestRecord("a", "kovan", "b1"),
		createCyclingRecord("c", "kovan", "b2"),
		createTestRecord("a", "localhost", "b2"),
	} {
		if _, _, err := s.WriteReceipt(ctx, rec); err != nil {
			t.Fatalf("WriteReceipt() failed: %v", err)
		}
	}

	batch, err := s.ListBatch(ctx, "b2")
	if err != nil {
		t.Fatalf("ListBatch() failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].Network != "kovan" || batch[1].Network != "localhost" {
		t.Errorf("batch order = %q, %q", batch[0].Network, batch[1].Network)
	}
}

func TestListNetworks(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, network := range []string{"mainnet", "kovan", "mainnet"} {
		if _, _, err := s.WriteReceipt(ctx, createTestRecord("a", network, "b1")); err != nil {
			t.Fatalf("WriteReceipt() failed: %v", err)
		}
	}

	networks, err := s.ListNetworks(ctx)
	if err != nil {
		t.Fatalf("ListNetworks() failed: %v", err)
	}
	if len(networks) != 2 || networks[0] != "kovan" || networks[1] != "mainnet" {
		t.Errorf("networks = %v, want [kovan mainnet]", networks)
	}
}

func TestGetLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("empty store seq = %d, want 0", seq)
	}

	if _, _, err := s.WriteReceipt(ctx, createTestRecord("a", "kovan", "b1")); err != nil {
		t.Fatalf("WriteReceipt() failed: %v", err)
	}
	if _, _, err := s.WriteReceipt(ctx, createCyclingRecord("c", "kovan", "b1")); err != nil {
		t.Fatalf("WriteReceipt() failed: %v", err)
	}

	seq, err = s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if seq != 2 {
		t.Errorf("seq = %d, want 2", seq)
	}
}

func TestListUserProxy(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestRecord("a", "kovan", "batch-1")
	other := createTestRecord("other", "kovan", "batch-1")
	other.UserProxy = "0xBEEF"
	other.Encoded = ir.NewIRArray(ir.NewIRUint(0), ir.NewIRString("0xBEEF"), other.Encoded[2])
	elsewhere := createTestRecord("a", "mainnet", "batch-2")

	for _, rec := range []ir.ReceiptRecord{a, other, elsewhere} {
		if _, _, err := s.WriteReceipt(ctx, rec); err != nil {
			t.Fatalf("WriteReceipt(%s/%s) failed: %v", rec.Network, rec.Name, err)
		}
	}

	got, err := s.ListUserProxy(ctx, "kovan", "0xaa")
	if err != nil {
		t.Fatalf("ListUserProxy() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Name != "a" || got[0].Network != "kovan" || got[0].Seq != 1 {
		t.Errorf("record = %s/%s #%d, want kovan/a #1", got[0].Network, got[0].Name, got[0].Seq)
	}

	none, err := s.ListUserProxy(ctx, "kovan", "0xCAFE")
	if err != nil {
		t.Fatalf("ListUserProxy() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d records for unknown proxy, want 0", len(none))
	}
}
