// Package task models a deferred, conditionally-triggered execution request
// submitted to the Gelato execution contract.
//
// A TaskReceipt wraps a Task, which is one TaskBase step plus an optional
// cycle of further steps the executor resubmits automatically. Receipts are
// built from raw Fields (the shape produced by CUE, YAML or JSON decoding) by
// BuildTaskReceipt, or from typed values by NewTaskReceipt. Both validate
// eagerly and never return a partially valid receipt.
//
// # Validation order
//
// The first violation wins, checked in this order:
//
//	MissingUserProxy -> MissingTask -> per TaskBase (base, then each cycle entry):
//	MissingProvider -> InvalidConditionsShape -> InvalidOrEmptyActions ->
//	InvalidAutoResubmitType; InvalidCycleShape before the cycle entries.
//
// Leaf values (next, id, expiryDate, value, operation) are checked only after
// every structural rule passed.
//
// All values are immutable after construction. Encoding lives in package
// encode; this package performs no I/O.
package task
