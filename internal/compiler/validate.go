package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/gelato/internal/task"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported type for validation

	// Receipt construction errors (E101-E111), one per task.ErrorKind
	ErrMissingUserProxy        = "E101" // userProxy missing or empty
	ErrMissingTask             = "E102" // task or task.base missing
	ErrMissingProvider         = "E103" // provider missing or without addr
	ErrInvalidConditionsShape  = "E104" // conditions not a list
	ErrInvalidOrEmptyActions   = "E105" // actions missing, not a list, or empty
	ErrInvalidAutoResubmitType = "E106" // autoResubmitSelf not a bool
	ErrInvalidCycleShape       = "E107" // cycle not a list of steps
	ErrInvalidNextType         = "E108" // next not an unsigned integer
	ErrInvalidNumber           = "E109" // id, expiryDate or value outside uint256
	ErrInvalidOperation        = "E110" // operation not Call or Delegatecall
	ErrInvalidField            = "E111" // any other leaf of the wrong type

	// Receipt set errors (E120-E129)
	ErrDuplicateReceiptID = "E120" // two receipts share a non-zero id
	ErrDuplicateEncoding  = "E121" // two definitions encode to the same receipt
)

var kindCodes = map[task.ErrorKind]string{
	task.KindMissingUserProxy:        ErrMissingUserProxy,
	task.KindMissingTask:             ErrMissingTask,
	task.KindMissingProvider:         ErrMissingProvider,
	task.KindInvalidConditionsShape:  ErrInvalidConditionsShape,
	task.KindInvalidOrEmptyActions:   ErrInvalidOrEmptyActions,
	task.KindInvalidAutoResubmitType: ErrInvalidAutoResubmitType,
	task.KindInvalidCycleShape:       ErrInvalidCycleShape,
	task.KindInvalidNextType:         ErrInvalidNextType,
	task.KindInvalidNumber:           ErrInvalidNumber,
	task.KindInvalidOperation:        ErrInvalidOperation,
	task.KindInvalidField:            ErrInvalidField,
}

// CodeForKind returns the error code for a task error kind, or "" when the
// kind is unknown.
func CodeForKind(kind task.ErrorKind) string {
	return kindCodes[kind]
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ToValidationError converts a compile or task error into a ValidationError.
// The second result is false when err carries no task error kind.
func ToValidationError(err error) (ValidationError, bool) {
	var ve *task.ValidationError
	if !errors.As(err, &ve) {
		return ValidationError{}, false
	}

	out := ValidationError{
		Field:   ve.Path,
		Message: ve.Message,
		Code:    CodeForKind(ve.Kind),
	}
	var ce *CompileError
	if errors.As(err, &ce) && ce.Pos.IsValid() {
		out.Line = ce.Pos.Line()
	}
	return out, true
}

// Validate checks receipts against construction rules and, for a set,
// cross-receipt rules. Returns all errors found (does not fail-fast across
// receipts). Supports *task.TaskReceipt, *CompiledReceipt and
// []*CompiledReceipt.
func Validate(v any) []ValidationError {
	switch r := v.(type) {
	case *task.TaskReceipt:
		return validateReceipt(r, 0)
	case *CompiledReceipt:
		return validateReceipt(r.Receipt, r.Pos.Line())
	case []*CompiledReceipt:
		var errs []ValidationError
		for _, c := range r {
			errs = append(errs, validateReceipt(c.Receipt, c.Pos.Line())...)
		}
		return append(errs, ValidateSet(r)...)
	default:
		return []ValidationError{{
			Field:   "receipt",
			Message: fmt.Sprintf("unsupported type %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateReceipt(r *task.TaskReceipt, line int) []ValidationError {
	if err := task.Validate(r); err != nil {
		ve, ok := ToValidationError(err)
		if !ok {
			return []ValidationError{{Field: "receipt", Message: err.Error(), Code: ErrUnsupportedType, Line: line}}
		}
		ve.Line = line
		return []ValidationError{ve}
	}
	return nil
}

// ValidateSet checks rules that span receipts: non-zero ids must be unique,
// and no two definitions may encode to the same receipt.
func ValidateSet(receipts []*CompiledReceipt) []ValidationError {
	var errs []ValidationError

	ids := make(map[string]string)
	hashes := make(map[string]string)
	for _, c := range receipts {
		if c.Receipt != nil && !c.Receipt.ID.IsZero() {
			id := c.Receipt.ID.String()
			if first, ok := ids[id]; ok {
				errs = append(errs, ValidationError{
					Field:   c.Name + ".id",
					Message: fmt.Sprintf("id %s already used by %s", id, first),
					Code:    ErrDuplicateReceiptID,
					Line:    c.Pos.Line(),
				})
			} else {
				ids[id] = c.Name
			}
		}

		if c.Hash == "" {
			continue
		}
		if first, ok := hashes[c.Hash]; ok {
			errs = append(errs, ValidationError{
				Field:   c.Name,
				Message: fmt.Sprintf("encodes to the same receipt as %s", first),
				Code:    ErrDuplicateEncoding,
				Line:    c.Pos.Line(),
			})
		} else {
			hashes[c.Hash] = c.Name
		}
	}

	return errs
}
