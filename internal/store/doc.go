// Package store provides the SQLite-backed receipt ledger: a local record of
// every encoded task receipt compiled for a network.
//
// The ledger is append-only:
//   - Receipts are keyed by (network, content hash); rewriting the same
//     encoding is a no-op
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - All queries include: ORDER BY seq ASC, hash ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes are computed by ir.ReceiptHash over the canonical JSON of
// the encoded array.
package store
