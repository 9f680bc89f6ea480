package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/compiler"
	"github.com/roach88/gelato/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the encoded receipts.
type CompilationResult struct {
	Network         string            `json:"network,omitempty"`
	EncodingVersion string            `json:"encoding_version"`
	Receipts        []CompiledSummary `json:"receipts"`
}

// CompiledSummary is one receipt in compile output.
type CompiledSummary struct {
	Name      string     `json:"name"`
	ID        ir.IRUint  `json:"id"`
	UserProxy string     `json:"user_proxy"`
	Steps     int        `json:"steps"`
	Hash      string     `json:"hash"`
	Encoded   ir.IRArray `json:"encoded"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <definitions-dir>",
		Short: "Compile receipt definitions to encoded task receipts",
		Long: `Compile CUE task receipt definitions into the positional array layout
GelatoCore expects.

Address references (addressbook:<category>.<entry>, deployment:<Contract>)
are resolved against the selected network before encoding.

Example:
  gelato compile ./receipts
  gelato compile ./receipts --network kovan -o encoded.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	network, loadResult, loadErrors := loadReceipts(opts.RootOptions, defsDir, LoadModeCollectAll, formatter)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	for _, c := range loadResult.Receipts {
		formatter.VerboseLog("Compiled receipt: %s (%s)", c.Name, c.Hash)
	}

	// Handle compilation errors
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := summarize(network, loadResult.Receipts)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	// Output success
	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarize converts compiled receipts into compile output.
func summarize(network string, receipts []*compiler.CompiledReceipt) *CompilationResult {
	result := &CompilationResult{
		Network:         network,
		EncodingVersion: ir.EncodingVersion,
		Receipts:        make([]CompiledSummary, 0, len(receipts)),
	}
	for _, c := range receipts {
		result.Receipts = append(result.Receipts, CompiledSummary{
			Name:      c.Name,
			ID:        c.Receipt.ID,
			UserProxy: string(c.Receipt.UserProxy),
			Steps:     len(c.Receipt.Task.Steps()),
			Hash:      c.Hash,
			Encoded:   c.Encoded,
		})
	}
	return result
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d receipt(s)", len(result.Receipts))
	if result.Network != "" {
		fmt.Fprintf(formatter.Writer, " for %s", result.Network)
	}
	fmt.Fprint(formatter.Writer, "\n\n")

	for _, r := range result.Receipts {
		stepSuffix := "steps"
		if r.Steps == 1 {
			stepSuffix = "step"
		}
		encoded, err := ir.MarshalCanonical(r.Encoded)
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "  %s: id %s, %d %s, %s\n", r.Name, r.ID, r.Steps, stepSuffix, shortHash(r.Hash))
		fmt.Fprintf(formatter.Writer, "    %s\n", encoded)
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote encoded receipts to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			cliErrors[i].Location = fmt.Sprintf("%s:%d:%d",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
	}
	if err := formatter.Errors("Compilation failed", cliErrors, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapErrorToCode(err), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result to a file.
func writeResultToFile(result *CompilationResult, filename string) error {
	// Use standard JSON with indentation for readability
	// (canonical JSON without indentation is used only for hashing)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling receipts: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// shortHash abbreviates a receipt hash for text output.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
