package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/config"
	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/logging"
	"github.com/roach88/gelato/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
	All      bool
	Batch    string
	Proxy    string
}

// ListResult holds the ledger records shown by list.
type ListResult struct {
	Network string             `json:"network,omitempty"`
	Records []ir.ReceiptRecord `json:"records"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List receipts recorded in the ledger",
		Long: `List receipts recorded in the local ledger, in the order they were
recorded.

By default only the selected network's receipts are shown. --proxy narrows
the list to one user proxy, given as an address or an address book reference.

Example:
  gelato list --db ./gelato.db
  gelato list --db ./gelato.db --all
  gelato list --db ./gelato.db --proxy addressbook:userProxy.treasury
  gelato list --db ./gelato.db --batch 01890a5d-ac96-774b-bcce-b302099a8057`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "list receipts for every network")
	cmd.Flags().StringVar(&opts.Batch, "batch", "", "list only the receipts of one batch")
	cmd.Flags().StringVar(&opts.Proxy, "proxy", "", "list only one user proxy's receipts on the selected network")
	cmd.MarkFlagsMutuallyExclusive("all", "batch", "proxy")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := logging.FromContext(cmd.Context())

	networkName, network, err := opts.selectNetwork()
	if err != nil {
		return outputCompileError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	if opts.All || opts.Batch != "" {
		networkName = ""
	} else if networkName == "" {
		return outputCompileError(formatter, ErrCodeConfig,
			"list needs a network: pass --network, --all, or use a config file with default_network", nil)
	}
	formatter.Network = networkName

	var proxy string
	if opts.Proxy != "" {
		proxy, err = network.Resolve(opts.Proxy)
		if err != nil {
			return outputCompileError(formatter, MapErrorToCode(err), err.Error(), nil)
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	var records []ir.ReceiptRecord
	switch {
	case opts.Batch != "":
		records, err = st.ListBatch(cmd.Context(), opts.Batch)
	case proxy != "":
		records, err = st.ListUserProxy(cmd.Context(), networkName, proxy)
	default:
		records, err = st.ListReceipts(cmd.Context(), networkName)
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("listing receipts: %v", err), nil)
	}
	formatter.VerboseLog("Read %d record(s) from %s", len(records), opts.Database)

	return outputListSuccess(formatter, &ListResult{Network: networkName, Records: records}, network)
}

// outputListSuccess prints the records. When network is known, user proxy
// addresses found in its address book are shown by name.
func outputListSuccess(formatter *OutputFormatter, result *ListResult, network *config.Network) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Records) == 0 {
		fmt.Fprintln(formatter.Writer, "No receipts recorded")
		return nil
	}

	for _, rec := range result.Records {
		proxy := rec.UserProxy
		if network != nil && rec.Network == network.Name {
			if name, ok := network.NameOf(rec.UserProxy); ok {
				proxy = name
			}
		}
		fmt.Fprintf(formatter.Writer, "#%d %s %s %s id=%s proxy=%s batch=%s\n",
			rec.Seq, rec.Network, shortHash(rec.Hash), rec.Name, rec.ReceiptID, proxy, rec.BatchID)
	}
	return nil
}
