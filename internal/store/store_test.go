package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestOpen_CreatesLedgerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("ledger file not created: %v", err)
	}
}

func TestOpen_KeepsRecordsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, _, err := s.WriteReceipt(ctx, createTestRecord("minimal", "kovan", "batch-1")); err != nil {
		t.Fatalf("WriteReceipt() failed: %v", err)
	}
	s.Close()

	for i := 0; i < 3; i++ {
		s, err = Open(path)
		if err != nil {
			t.Fatalf("reopen %d failed: %v", i, err)
		}
		seq, err := s.GetLastSeq(ctx)
		if err != nil {
			t.Fatalf("GetLastSeq() failed: %v", err)
		}
		if seq != 1 {
			t.Errorf("reopen %d: last seq = %d, want 1", i, seq)
		}
		s.Close()
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	if _, err := Open("/nonexistent/dir/ledger.db"); err == nil {
		t.Error("expected error for ledger in missing directory")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on zero Store = %v, want nil", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			got, err := s.pragmaValue(p.name)
			if err != nil {
				t.Fatal(err)
			}
			if got != p.want {
				t.Errorf("PRAGMA %s = %q, want %q", p.name, got, p.want)
			}
		})
	}
}

func TestSchema_ReceiptsColumns(t *testing.T) {
	s := createTestStore(t)

	columns := tableColumns(t, s.db, "receipts")
	want := []string{
		"network", "hash", "name", "receipt_id", "user_proxy",
		"encoded", "batch_id", "seq", "encoding_version",
	}
	if !slices.Equal(columns, want) {
		t.Errorf("columns = %v, want %v", columns, want)
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	indexes := tableIndexes(t, s.db, "receipts")
	for _, want := range []string{"idx_receipts_network_seq", "idx_receipts_batch", "idx_receipts_user_proxy"} {
		if !slices.Contains(indexes, want) {
			t.Errorf("missing index %q, have %v", want, indexes)
		}
	}
}

func TestSchema_PrimaryKeyIsNetworkAndHash(t *testing.T) {
	s := createTestStore(t)

	insert := `INSERT INTO receipts
		(network, hash, name, receipt_id, user_proxy, encoded, batch_id, seq, encoding_version)
		VALUES (?, 'h1', 'n', '0', '0xAA', '[]', 'b', ?, '1')`

	if _, err := s.db.Exec(insert, "kovan", 1); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, "kovan", 2); err == nil {
		t.Error("duplicate (network, hash) inserted")
	}
	if _, err := s.db.Exec(insert, "mainnet", 3); err != nil {
		t.Errorf("same hash on another network rejected: %v", err)
	}
}

func TestSchema_SeqUnique(t *testing.T) {
	s := createTestStore(t)

	insert := `INSERT INTO receipts
		(network, hash, name, receipt_id, user_proxy, encoded, batch_id, seq, encoding_version)
		VALUES ('kovan', ?, 'n', '0', '0xAA', '[]', 'b', 7, '1')`

	if _, err := s.db.Exec(insert, "h1"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, "h2"); err == nil {
		t.Error("duplicate seq inserted")
	}
}

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		if m.version != i+1 {
			t.Errorf("migrations[%d].version = %d, want %d", i, m.version, i+1)
		}
	}
	if schemaVersion != len(migrations) {
		t.Errorf("schemaVersion = %d, want %d", schemaVersion, len(migrations))
	}
}

func TestMigrations_FreshLedgerAtLatestVersion(t *testing.T) {
	s := createTestStore(t)

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != schemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, schemaVersion)
	}
}

func TestMigrations_UpgradeFromEveryVersion(t *testing.T) {
	for from := 0; from < schemaVersion; from++ {
		t.Run(fmt.Sprintf("from v%d", from), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.db")

			// Build a ledger that stopped at version from.
			db, err := sql.Open("sqlite3", path)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := db.Exec(schemaSQL); err != nil {
				t.Fatalf("apply schema: %v", err)
			}
			for _, m := range migrations[:from] {
				if _, err := db.Exec(m.stmt); err != nil {
					t.Fatalf("apply migration %d: %v", m.version, err)
				}
			}
			if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", from)); err != nil {
				t.Fatal(err)
			}
			db.Close()

			s, err := Open(path)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer s.Close()

			version, err := s.SchemaVersion()
			if err != nil {
				t.Fatal(err)
			}
			if version != schemaVersion {
				t.Errorf("SchemaVersion() = %d, want %d", version, schemaVersion)
			}
			indexes := tableIndexes(t, s.db, "receipts")
			if !slices.Contains(indexes, "idx_receipts_user_proxy") {
				t.Errorf("missing user proxy index after upgrade, have %v", indexes)
			}
		})
	}
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		t.Fatalf("table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?", table)
	if err != nil {
		t.Fatalf("indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
