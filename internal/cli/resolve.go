package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/config"
)

// Resolution is one reference and the address it resolved to.
type Resolution struct {
	Ref     string `json:"ref"`
	Address string `json:"address"`
	Name    string `json:"name,omitempty"` // reverse lookup of Address
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <ref>...",
		Short: "Resolve address book and deployment references",
		Long: `Resolve address references against the selected network.

  addressbook:<category>.<entry>  entry from the network's address book
  deployment:<Contract>           deployed contract address

Plain addresses are looked up in reverse and shown with their name.

Example:
  gelato resolve addressbook:erc20.DAI deployment:GelatoCore`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runResolve(opts *RootOptions, refs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	name, network, err := opts.selectNetwork()
	if err != nil {
		return outputCompileError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	formatter.Network = name
	if network == nil {
		return outputCompileError(formatter, ErrCodeConfig,
			fmt.Sprintf("resolve needs a config file: pass --config or create %s", config.DefaultFileName), nil)
	}
	formatter.VerboseLog("Resolving %d reference(s) on %s", len(refs), network.Name)

	resolutions := make([]Resolution, 0, len(refs))
	for _, ref := range refs {
		addr, err := network.Resolve(ref)
		if err != nil {
			code := ErrCodeGeneric
			if errors.Is(err, config.ErrUnresolved) {
				code = ErrCodeUnresolved
			}
			return outputCompileError(formatter, code, err.Error(), nil)
		}
		res := Resolution{Ref: ref, Address: addr}
		if name, ok := network.NameOf(addr); ok {
			res.Name = name
		}
		resolutions = append(resolutions, res)
	}

	if formatter.Format == "json" {
		return formatter.Success(resolutions)
	}
	for _, res := range resolutions {
		if res.Name != "" && res.Ref == res.Address {
			fmt.Fprintf(formatter.Writer, "%s = %s\n", res.Address, res.Name)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s = %s\n", res.Ref, res.Address)
	}
	return nil
}
