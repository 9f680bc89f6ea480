package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gelato/internal/compiler"
	"github.com/roach88/gelato/internal/config"
	"github.com/roach88/gelato/internal/task"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// DefinitionsField is the top-level CUE field holding receipt definitions:
//
//	receipt: rebalance: { userProxy: "...", task: { base: {...} } }
const DefinitionsField = "receipt"

// LoadResult contains the results of loading definitions from a directory.
type LoadResult struct {
	Receipts  []*compiler.CompiledReceipt
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions loads and compiles the receipt definitions in dir.
// Addresses are resolved through resolver (nil leaves them as written).
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
// A nil result means nothing could be compiled.
func LoadDefinitions(dir string, mode LoadMode, resolver compiler.Resolver) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	// Check for load errors
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	// Build value from instance
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	defs := value.LookupPath(cue.ParsePath(DefinitionsField))
	if !defs.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeNoDefinitions, Message: fmt.Sprintf("no %s definitions found in %s", DefinitionsField, dir)}}
	}

	iter, err := defs.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s definitions: %v", DefinitionsField, err), Pos: defs.Pos()}}
	}
	for iter.Next() {
		c, compileErr := compiler.CompileReceipt(iter.Value(), resolver)
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, DefinitionsField+"."+iter.Selector().String()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Receipts = append(result.Receipts, c)
	}

	// Check if we found anything
	if len(result.Receipts) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoDefinitions, Message: fmt.Sprintf("no %s definitions found in %s", DefinitionsField, dir)})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
// The message is prefixed with the definition it came from.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapErrorToCode(err),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
// Receipt validation codes (E1xx) are defined in the compiler package.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeConfig        = "E008" // Config load or network selection failed
	ErrCodeStore         = "E009" // Ledger database error
	ErrCodeNoDefinitions = "E010" // No receipt definitions found
	ErrCodeUnresolved    = "E011" // Address reference could not be resolved
)

// MapErrorToCode maps a compile error to an error code: the task error kind's
// code when there is one, ErrCodeUnresolved for address resolution failures,
// ErrCodeGeneric otherwise.
func MapErrorToCode(err error) string {
	if code := compiler.CodeForKind(task.KindOf(err)); code != "" {
		return code
	}
	if errors.Is(err, config.ErrUnresolved) {
		return ErrCodeUnresolved
	}
	return ErrCodeGeneric
}

// loadReceipts selects the network from the global flags, then loads and
// compiles the definitions in dir against it. Without a config file,
// address references fail to resolve and plain addresses pass through.
func loadReceipts(opts *RootOptions, dir string, mode LoadMode, formatter *OutputFormatter) (string, *LoadResult, []error) {
	name, network, err := opts.selectNetwork()
	if err != nil {
		return "", nil, []error{&LoadError{Code: ErrCodeConfig, Message: err.Error()}}
	}
	formatter.Network = name
	if network != nil {
		formatter.VerboseLog("Using network %s (chain %d)", network.Name, network.ChainID)
	}

	result, errs := LoadDefinitions(dir, mode, network)
	return name, result, errs
}
