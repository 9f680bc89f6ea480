package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Receipts int                        `json:"receipts"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definitions-dir>",
		Short: "Validate receipt definitions without writing output",
		Long: `Validate CUE task receipt definitions.

Stops at the first definition that cannot be built, then checks the set as
a whole: non-zero receipt ids must be unique and no two definitions may
encode to the same receipt.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	// Use shared loader with fail-fast mode for validation
	_, loadResult, loadErrors := loadReceipts(opts, defsDir, LoadModeFailFast, formatter)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	validationErrors := validateAll(loadResult, loadErrors, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	// Output success
	return outputValidateSuccess(formatter, len(loadResult.Receipts))
}

// validateAll converts load errors into validation errors, then runs the
// receipt and set checks over everything that compiled.
func validateAll(result *LoadResult, loadErrors []error, formatter *OutputFormatter) []compiler.ValidationError {
	var allErrors []compiler.ValidationError

	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			allErrors = append(allErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineOf(loadErr),
			})
			continue
		}
		allErrors = append(allErrors, compiler.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		})
	}

	for _, c := range result.Receipts {
		formatter.VerboseLog("Validating receipt: %s", c.Name)
	}
	allErrors = append(allErrors, compiler.Validate(result.Receipts)...)

	return allErrors
}

// lineOf extracts the line number from a load error's position.
func lineOf(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, count int) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Receipts: count}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All task receipts valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	cliErrors := make([]CLIError, len(errs))
	for i, e := range errs {
		cliErrors[i] = CLIError{Code: e.Code, Message: e.Message}
		if e.Line > 0 {
			cliErrors[i].Location = fmt.Sprintf("line %d", e.Line)
		}
	}
	result := ValidationResult{Valid: false, Errors: errs}
	if err := formatter.Errors("Validation failed", cliErrors, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateDefinitionsDir validates all receipt definitions in a directory
// without address resolution.
// This is a helper function for external callers.
func ValidateDefinitionsDir(defsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadDefinitions(defsDir, LoadModeFailFast, nil)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	// Create a silent formatter for validateAll
	silentFormatter := &OutputFormatter{Format: "text", Verbose: false, Writer: io.Discard}
	return validateAll(loadResult, loadErrors, silentFormatter), nil
}
