package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gelato/internal/ir"
)

// ErrHashMismatch is returned when a record's Hash does not match its encoding.
var ErrHashMismatch = errors.New("hash does not match encoded receipt")

// WriteResult reports where one receipt landed in the ledger.
type WriteResult struct {
	Seq      int64
	Inserted bool
}

// WriteReceipt appends a receipt record to the ledger.
// Returns the record's seq and whether a new row was inserted.
//
// Uses ON CONFLICT(network, hash) DO NOTHING for idempotency: writing the
// same encoding to the same network again returns the existing seq and
// inserted=false. rec.Seq is ignored; the store assigns the next logical
// sequence number inside the same transaction.
//
// An empty rec.Hash is computed from rec.Encoded; a non-empty one must match.
// An empty rec.EncodingVersion defaults to ir.EncodingVersion.
func (s *Store) WriteReceipt(ctx context.Context, rec ir.ReceiptRecord) (seq int64, inserted bool, err error) {
	results, err := s.WriteReceipts(ctx, []ir.ReceiptRecord{rec})
	if err != nil {
		return 0, false, err
	}
	return results[0].Seq, results[0].Inserted, nil
}

// WriteReceipts appends recs in order within a single transaction, with the
// same per-record rules as WriteReceipt. If any record fails nothing is
// written. Results are index-aligned with recs.
func (s *Store) WriteReceipts(ctx context.Context, recs []ir.ReceiptRecord) ([]WriteResult, error) {
	rows := make([]receiptRow, len(recs))
	for i, rec := range recs {
		row, err := newReceiptRow(rec)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("write receipt: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	results := make([]WriteResult, len(rows))
	for i, row := range rows {
		res, err := insertReceipt(ctx, tx, row)
		if err != nil {
			return nil, fmt.Errorf("write receipt %s: %w", row.rec.Name, err)
		}
		results[i] = res
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("write receipt: commit: %w", err)
	}
	return results, nil
}

// receiptRow is a record checked and serialized for insertion.
type receiptRow struct {
	rec     ir.ReceiptRecord
	hash    string
	encoded string
	version string
}

func newReceiptRow(rec ir.ReceiptRecord) (receiptRow, error) {
	if rec.Network == "" {
		return receiptRow{}, fmt.Errorf("write receipt: network is required")
	}
	if len(rec.Encoded) == 0 {
		return receiptRow{}, fmt.Errorf("write receipt: encoded receipt is required")
	}

	hash, err := ir.ReceiptHash(rec.Encoded)
	if err != nil {
		return receiptRow{}, fmt.Errorf("write receipt: %w", err)
	}
	if rec.Hash != "" && rec.Hash != hash {
		return receiptRow{}, fmt.Errorf("write receipt %s: %w", rec.Hash, ErrHashMismatch)
	}

	encodedJSON, err := marshalEncoded(rec.Encoded)
	if err != nil {
		return receiptRow{}, fmt.Errorf("write receipt: %w", err)
	}

	version := rec.EncodingVersion
	if version == "" {
		version = ir.EncodingVersion
	}
	return receiptRow{rec: rec, hash: hash, encoded: encodedJSON, version: version}, nil
}

func insertReceipt(ctx context.Context, tx *sql.Tx, row receiptRow) (WriteResult, error) {
	var next int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM receipts
	`).Scan(&next); err != nil {
		return WriteResult{}, fmt.Errorf("next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO receipts
		(network, hash, name, receipt_id, user_proxy, encoded, batch_id, seq, encoding_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(network, hash) DO NOTHING
	`,
		row.rec.Network,
		row.hash,
		row.rec.Name,
		row.rec.ReceiptID.String(),
		row.rec.UserProxy,
		row.encoded,
		row.rec.BatchID,
		next,
		row.version,
	)
	if err != nil {
		return WriteResult{}, fmt.Errorf("insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return WriteResult{}, fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return WriteResult{Seq: next, Inserted: true}, nil
	}

	// Conflict - already recorded, report the existing seq
	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT seq FROM receipts WHERE network = ? AND hash = ?
	`, row.rec.Network, row.hash).Scan(&seq); err != nil {
		return WriteResult{}, fmt.Errorf("select existing: %w", err)
	}
	return WriteResult{Seq: seq}, nil
}
