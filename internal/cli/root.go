package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/config"
	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to gelato.yaml; empty means look in the working directory
	Network string // empty means the config's default network
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gelato CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "gelato",
		Short:   "Gelato task receipts",
		Version: ir.ToolVersion,
		Long: `Build, validate and encode Gelato task receipts.

Task receipts are defined in CUE files, resolved against a network's address
book and deployments, and encoded into the positional array layout the
GelatoCore contract expects.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			level := logging.InfoLevel
			if opts.Verbose {
				level = logging.DebugLevel
			}
			logger := logging.New(logging.Config{
				Level:  level,
				Output: cmd.ErrOrStderr(),
				JSON:   opts.Format == "json",
			})
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "network config file (default ./"+config.DefaultFileName+" if present)")
	cmd.PersistentFlags().StringVar(&opts.Network, "network", "", "network name (default from config)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig loads the config named by --config, or DefaultFileName from the
// working directory. Returns nil without error when no --config was given
// and the default file does not exist.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	path := o.Config
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		path = config.DefaultFileName
	}
	return config.Load(path)
}

// selectNetwork returns the network name and its config. The config is nil
// when no config file is in use; the name is then whatever --network says.
func (o *RootOptions) selectNetwork() (string, *config.Network, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return "", nil, err
	}
	if cfg == nil {
		return o.Network, nil, nil
	}
	n, err := cfg.Network(o.Network)
	if err != nil {
		return "", nil, err
	}
	return n.Name, n, nil
}
