package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gelato/internal/ir"
)

// ErrNotFound is returned when no receipt matches the lookup.
var ErrNotFound = errors.New("receipt not found")

const receiptColumns = `hash, name, network, receipt_id, user_proxy, encoded, batch_id, seq, encoding_version`

// ReadReceipt retrieves a single receipt by network and content hash.
// Returns ErrNotFound if absent.
func (s *Store) ReadReceipt(ctx context.Context, network, hash string) (ir.ReceiptRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+receiptColumns+`
		FROM receipts
		WHERE network = ? AND hash = ?
	`, network, hash)

	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.ReceiptRecord{}, fmt.Errorf("read receipt %s on %s: %w", hash, network, ErrNotFound)
	}
	return rec, err
}

// ListReceipts returns the receipts recorded for network, or every receipt
// when network is empty. Results ordered by seq ASC, hash ASC.
func (s *Store) ListReceipts(ctx context.Context, network string) ([]ir.ReceiptRecord, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts`
	var args []any
	if network != "" {
		query += ` WHERE network = ?`
		args = append(args, network)
	}
	query += ` ORDER BY seq ASC, hash ASC COLLATE BINARY`

	return s.queryReceipts(ctx, query, args...)
}

// ListBatch returns the receipts written under one batch ID in seq order.
func (s *Store) ListBatch(ctx context.Context, batchID string) ([]ir.ReceiptRecord, error) {
	return s.queryReceipts(ctx, `
		SELECT `+receiptColumns+`
		FROM receipts
		WHERE batch_id = ?
		ORDER BY seq ASC, hash ASC COLLATE BINARY
	`, batchID)
}

// ListUserProxy returns the receipts a user proxy submitted on network, in seq
// order. Addresses compare case-insensitively.
func (s *Store) ListUserProxy(ctx context.Context, network, userProxy string) ([]ir.ReceiptRecord, error) {
	return s.queryReceipts(ctx, `
		SELECT `+receiptColumns+`
		FROM receipts
		WHERE network = ? AND user_proxy = ? COLLATE NOCASE
		ORDER BY seq ASC, hash ASC COLLATE BINARY
	`, network, userProxy)
}

// ListNetworks returns all distinct networks with recorded receipts,
// ordered alphabetically.
func (s *Store) ListNetworks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT network FROM receipts
		ORDER BY network
	`)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	networks := []string{}
	for rows.Next() {
		var network string
		if err := rows.Scan(&network); err != nil {
			return nil, fmt.Errorf("scan network: %w", err)
		}
		networks = append(networks, network)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate networks: %w", err)
	}
	return networks, nil
}

// GetLastSeq returns the highest seq number used in the ledger, or 0.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM receipts
	`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

func (s *Store) queryReceipts(ctx context.Context, query string, args ...any) ([]ir.ReceiptRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	defer rows.Close()

	records := []ir.ReceiptRecord{}
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (ir.ReceiptRecord, error) {
	var rec ir.ReceiptRecord
	var receiptID, encodedJSON string

	if err := row.Scan(
		&rec.Hash, &rec.Name, &rec.Network, &receiptID, &rec.UserProxy,
		&encodedJSON, &rec.BatchID, &rec.Seq, &rec.EncodingVersion,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.ReceiptRecord{}, err
		}
		return ir.ReceiptRecord{}, fmt.Errorf("scan receipt: %w", err)
	}

	id, err := unmarshalReceiptID(receiptID)
	if err != nil {
		return ir.ReceiptRecord{}, err
	}
	rec.ReceiptID = id

	encoded, err := unmarshalEncoded(encodedJSON)
	if err != nil {
		return ir.ReceiptRecord{}, err
	}
	rec.Encoded = encoded

	return rec, nil
}
