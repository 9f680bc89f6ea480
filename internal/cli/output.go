package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/gelato/internal/logging"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure (invalid receipts, duplicate ids)
	ExitCommandError = 2 // Command error (bad paths, config, unresolved references, database)
)

// ExitError carries the process exit code for a failed command. The
// formatter has already reported the failure when one is returned.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output when Logger is nil; defaults to Writer
	Verbose   bool
	Logger    *log.Logger // receives verbose output at debug level when set

	// Network is stamped on every JSON response once a network is selected.
	Network string
}

// newFormatter builds the formatter for a command from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		Logger:    logging.FromContext(cmd.Context()),
	}
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status  string    `json:"status"` // "ok" or "error"
	Network string    `json:"network,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"` // first error when Status is "error"
}

// CLIError is one reported error.
type CLIError struct {
	Code     string `json:"code"` // "E001", "E105", ...
	Message  string `json:"message"`
	Location string `json:"location,omitempty"` // "file:line:col" or "line N"
	Details  any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a single error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Errors outputs a list of errors under title ("Compilation failed"). In
// JSON the first error is the envelope's error and data carries the rest;
// data defaults to errs.
func (f *OutputFormatter) Errors(title string, errs []CLIError, data any) error {
	if len(errs) == 0 {
		return nil
	}
	if f.Format == "json" {
		if data == nil {
			data = errs
		}
		return f.writeJSON(CLIResponse{Status: "error", Error: &errs[0], Data: data})
	}

	fmt.Fprintf(f.Writer, "✗ %s\n\n", title)
	for _, e := range errs {
		if e.Location != "" {
			fmt.Fprintln(f.Writer, e.Location)
		}
		fmt.Fprintf(f.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}
	return nil
}

func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	resp.Network = f.Network
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled. It goes to
// Logger at debug level when set, otherwise to ErrWriter. Verbose output
// never goes to Writer in JSON mode.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	if f.Logger != nil {
		f.Logger.Debugf(format, args...)
		return
	}
	w := f.ErrWriter
	if w == nil {
		if f.Format == "json" {
			return
		}
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
