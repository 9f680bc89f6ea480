package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/logging"
	"github.com/roach88/gelato/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string

	// BatchGenerator allows overriding the batch ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	BatchGenerator BatchIDGenerator
}

// RecordResult summarizes one record invocation.
type RecordResult struct {
	Network  string         `json:"network"`
	BatchID  string         `json:"batch_id"`
	Inserted int            `json:"inserted"`
	Existing int            `json:"existing"`
	Receipts []RecordedItem `json:"receipts"`
}

// RecordedItem is one receipt written (or found) in the ledger.
type RecordedItem struct {
	Name     string `json:"name"`
	Hash     string `json:"hash"`
	Seq      int64  `json:"seq"`
	Inserted bool   `json:"inserted"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	return newRecordCommand(&RecordOptions{RootOptions: rootOpts})
}

func newRecordCommand(opts *RecordOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <definitions-dir>",
		Short: "Compile receipts and append them to the local ledger",
		Long: `Compile task receipt definitions and append the encoded receipts to a
SQLite ledger under a new batch ID.

Recording is idempotent per network: a receipt whose encoding is already in
the ledger keeps its original sequence number and batch.

Example:
  gelato record --db ./gelato.db ./receipts
  gelato record --db ./gelato.db --network kovan ./receipts`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRecord(opts *RecordOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := logging.FromContext(cmd.Context())

	network, loadResult, loadErrors := loadReceipts(opts.RootOptions, defsDir, LoadModeCollectAll, formatter)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}
	if network == "" {
		return outputCompileError(formatter, ErrCodeConfig,
			"record needs a network: pass --network or use a config file with default_network", nil)
	}

	// Open database (create if not exists)
	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.BatchGenerator
	if gen == nil {
		gen = UUIDv7Generator{}
	}

	result := &RecordResult{
		Network:  network,
		BatchID:  gen.Generate(),
		Receipts: make([]RecordedItem, 0, len(loadResult.Receipts)),
	}

	recs := make([]ir.ReceiptRecord, len(loadResult.Receipts))
	for i, c := range loadResult.Receipts {
		recs[i] = c.Record(network, result.BatchID)
	}
	written, err := st.WriteReceipts(cmd.Context(), recs)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("recording batch: %v", err), nil)
	}

	for i, c := range loadResult.Receipts {
		w := written[i]
		logger.Debug("recorded receipt", "name", c.Name, "hash", c.Hash, "seq", w.Seq, "inserted", w.Inserted)

		if w.Inserted {
			result.Inserted++
		} else {
			result.Existing++
		}
		result.Receipts = append(result.Receipts, RecordedItem{
			Name:     c.Name,
			Hash:     c.Hash,
			Seq:      w.Seq,
			Inserted: w.Inserted,
		})
	}

	return outputRecordSuccess(formatter, result)
}

// outputRecordSuccess outputs the record summary.
func outputRecordSuccess(formatter *OutputFormatter, result *RecordResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Recorded %d receipt(s) on %s (%d already recorded)\n",
		result.Inserted, result.Network, result.Existing)
	fmt.Fprintf(formatter.Writer, "Batch: %s\n\n", result.BatchID)
	for _, r := range result.Receipts {
		status := "new"
		if !r.Inserted {
			status = "existing"
		}
		fmt.Fprintf(formatter.Writer, "  #%d %s %s (%s)\n", r.Seq, shortHash(r.Hash), r.Name, status)
	}
	return nil
}
