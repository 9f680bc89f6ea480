package task

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which construction rule a receipt violated.
type ErrorKind string

const (
	// KindMissingUserProxy indicates the receipt has no owning proxy address.
	KindMissingUserProxy ErrorKind = "MissingUserProxy"

	// KindMissingTask indicates the receipt has no task, or the task has no base step.
	KindMissingTask ErrorKind = "MissingTask"

	// KindMissingProvider indicates a TaskBase without a provider address.
	KindMissingProvider ErrorKind = "MissingProvider"

	// KindInvalidConditionsShape indicates conditions present but not a sequence.
	KindInvalidConditionsShape ErrorKind = "InvalidConditionsShape"

	// KindInvalidOrEmptyActions indicates actions missing, not a sequence, or empty.
	KindInvalidOrEmptyActions ErrorKind = "InvalidOrEmptyActions"

	// KindInvalidAutoResubmitType indicates autoResubmitSelf present but not a boolean.
	KindInvalidAutoResubmitType ErrorKind = "InvalidAutoResubmitType"

	// KindInvalidCycleShape indicates cycle present but not a sequence of steps.
	KindInvalidCycleShape ErrorKind = "InvalidCycleShape"

	// KindInvalidNextType indicates next present but not an unsigned integer.
	KindInvalidNextType ErrorKind = "InvalidNextType"

	// KindInvalidNumber indicates id, expiryDate or an action value outside uint256.
	KindInvalidNumber ErrorKind = "InvalidNumber"

	// KindInvalidOperation indicates an action operation other than Call or Delegatecall.
	KindInvalidOperation ErrorKind = "InvalidOperation"

	// KindInvalidField indicates any other leaf of the wrong type.
	KindInvalidField ErrorKind = "InvalidField"
)

// ValidationError reports the first rule a receipt violated.
type ValidationError struct {
	Kind    ErrorKind
	Path    string // e.g. "task.cycle[1].actions"
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newValidationError(kind ErrorKind, path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the ErrorKind carried by err, or "" if err is not a
// ValidationError. Uses errors.As to handle wrapped errors.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
