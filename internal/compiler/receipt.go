package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gelato/internal/encode"
	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/task"
)

// Resolver turns an address reference into an address.
// *config.Network implements it.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// CompiledReceipt is a validated receipt together with its contract encoding.
type CompiledReceipt struct {
	Name    string            `json:"name"`
	Receipt *task.TaskReceipt `json:"receipt"`
	Encoded ir.IRArray        `json:"encoded"`
	Hash    string            `json:"hash"`

	// Pos is the position of the definition in its source file.
	Pos token.Pos `json:"-"`
}

// Record returns the ledger entry for this receipt on network.
func (c *CompiledReceipt) Record(network, batchID string) ir.ReceiptRecord {
	return ir.ReceiptRecord{
		Hash:            c.Hash,
		Name:            c.Name,
		Network:         network,
		ReceiptID:       c.Receipt.ID,
		UserProxy:       string(c.Receipt.UserProxy),
		Encoded:         c.Encoded,
		BatchID:         batchID,
		EncodingVersion: ir.EncodingVersion,
	}
}

// CompileReceipt turns a CUE receipt definition into a CompiledReceipt.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the definition struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`receipt: rebalance: { userProxy: "0x..." ... }`)
//	c, err := CompileReceipt(v.LookupPath(cue.ParsePath("receipt.rebalance")), network)
//
// Every address field is passed through resolver after validation; a nil
// resolver leaves addresses as written.
func CompileReceipt(v cue.Value, resolver Resolver) (*CompiledReceipt, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &CompiledReceipt{Pos: v.Pos()}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		c.Name = labels[len(labels)-1].Unquoted()
	}

	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "receipt",
			Message: fmt.Sprintf("receipt must be a struct, got %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	raw, err := toFields(v)
	if err != nil {
		return nil, err
	}

	r, err := task.BuildTaskReceipt(raw)
	if err != nil {
		return nil, taskCompileError(v, err)
	}

	if resolver != nil {
		var failedPath string
		var resolveErr error
		resolved, err := r.MapAddresses(func(path string, addr task.Address) (task.Address, error) {
			out, err := resolver.Resolve(string(addr))
			if err != nil {
				failedPath, resolveErr = path, err
				return "", err
			}
			return task.Address(out), nil
		})
		if resolveErr != nil {
			return nil, &CompileError{
				Field:   failedPath,
				Message: resolveErr.Error(),
				Pos:     posOf(v, failedPath),
				Err:     resolveErr,
			}
		}
		if err != nil {
			return nil, taskCompileError(v, err)
		}
		r = resolved
	}

	c.Receipt = r
	c.Encoded = encode.Receipt(r)
	c.Hash, err = ir.ReceiptHash(c.Encoded)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", c.Name, err)
	}
	return c, nil
}

// toFields converts a concrete CUE struct into task.Fields.
func toFields(v cue.Value) (task.Fields, error) {
	raw, err := toGo(v)
	if err != nil {
		return nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &CompileError{Field: "receipt", Message: "receipt must be a struct", Pos: v.Pos()}
	}
	return task.Fields(m), nil
}

// toGo converts a concrete CUE value into plain Go values: structs become
// map[string]any, lists []any, integers *big.Int. Floats are kept as float64
// so the task validator reports them against the field they appear in.
func toGo(v cue.Value) (any, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := map[string]any{}
		for iter.Next() {
			val, err := toGo(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Selector().Unquoted()] = val
		}
		return out, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for iter.Next() {
			val, err := toGo(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil

	case cue.IntKind:
		n, err := v.Int(nil)
		if err != nil {
			return nil, formatCUEError(err)
		}
		return n, nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil

	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil

	case cue.NullKind:
		return nil, nil
	}

	return nil, &CompileError{
		Field:   v.Path().String(),
		Message: fmt.Sprintf("unsupported value kind %s", v.Kind()),
		Pos:     v.Pos(),
	}
}

// taskCompileError attaches the CUE position of the offending field to a
// task validation error.
func taskCompileError(v cue.Value, err error) error {
	var ve *task.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	field := ve.Path
	if field == "" {
		field = "receipt"
	}
	return &CompileError{
		Field:   field,
		Message: ve.Message,
		Pos:     posOf(v, ve.Path),
		Err:     ve,
	}
}

// posOf returns the position of path within v, walking up to the nearest
// existing ancestor when the field itself is absent.
func posOf(v cue.Value, path string) token.Pos {
	for path != "" {
		p := cue.ParsePath(path)
		if p.Err() == nil {
			if fv := v.LookupPath(p); fv.Exists() && fv.Pos().IsValid() {
				return fv.Pos()
			}
		}
		path = parentPath(path)
	}
	return v.Pos()
}

// parentPath strips the last selector: "a.b[1]" -> "a.b", "a.b" -> "a".
func parentPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' || path[i] == '[' {
			return path[:i]
		}
	}
	return ""
}

// CompileError represents a compilation error with source location.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error // Underlying error, if any
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the underlying error so task.KindOf works through it.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError converts CUE errors to CompileError with position info.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{
			Field:   "cue",
			Message: err.Error(),
		}
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{
		Field:   "cue",
		Message: firstErr.Error(),
	}
}
