// Package encode flattens task receipts into the positional array layout the
// execution contract accepts.
//
// Field order at every level is fixed by the contract ABI and must never
// change:
//
//	Provider    [addr, module]
//	Condition   [inst, data]
//	Action      [addr, data, operation, value, termsOkCheck]
//	TaskBase    [Provider, [Condition...], [Action...], expiryDate, autoResubmitSelf]
//	Task        [TaskBase, next, [TaskBase...]]
//	TaskReceipt [id, userProxy, Task]
//
// The encoder does not validate. Inputs must come from task.BuildTaskReceipt
// or task.NewTaskReceipt.
package encode

import (
	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/task"
)

// Provider encodes p as [addr, module].
func Provider(p task.Provider) ir.IRArray {
	return ir.NewIRArray(
		ir.NewIRString(string(p.Addr)),
		ir.NewIRString(string(p.Module)),
	)
}

// Condition encodes c as [inst, data].
func Condition(c task.Condition) ir.IRArray {
	return ir.NewIRArray(
		ir.NewIRString(string(c.Inst)),
		ir.NewIRString(string(c.Data)),
	)
}

// Conditions encodes each condition in order. A nil slice encodes as [].
func Conditions(cs []task.Condition) ir.IRArray {
	out := make(ir.IRArray, len(cs))
	for i, c := range cs {
		out[i] = Condition(c)
	}
	return out
}

// Action encodes a as [addr, data, operation, value, termsOkCheck].
func Action(a task.Action) ir.IRArray {
	return ir.NewIRArray(
		ir.NewIRString(string(a.Addr)),
		ir.NewIRString(string(a.Data)),
		ir.NewIRUint(uint64(a.Operation)),
		a.Value,
		ir.NewIRBool(a.TermsOkCheck),
	)
}

// Actions encodes each action in order.
func Actions(as []task.Action) ir.IRArray {
	out := make(ir.IRArray, len(as))
	for i, a := range as {
		out[i] = Action(a)
	}
	return out
}

// TaskBase encodes one step.
func TaskBase(b task.TaskBase) ir.IRArray {
	return ir.NewIRArray(
		Provider(b.Provider),
		Conditions(b.Conditions),
		Actions(b.Actions),
		b.ExpiryDate,
		ir.NewIRBool(b.AutoResubmitSelf),
	)
}

// Cycle encodes the resubmission chain, preserving its order.
func Cycle(steps []task.TaskBase) ir.IRArray {
	out := make(ir.IRArray, len(steps))
	for i, b := range steps {
		out[i] = TaskBase(b)
	}
	return out
}

// Task encodes t as [TaskBase, next, cycle]. It panics if t is nil.
func Task(t *task.Task) ir.IRArray {
	if t == nil {
		panic("encode: nil task")
	}
	return ir.NewIRArray(
		TaskBase(t.Base),
		t.Next,
		Cycle(t.Cycle),
	)
}

// Receipt encodes r as [id, userProxy, Task]. It panics if r or its task is nil.
func Receipt(r *task.TaskReceipt) ir.IRArray {
	if r == nil {
		panic("encode: nil receipt")
	}
	return ir.NewIRArray(
		r.ID,
		ir.NewIRString(string(r.UserProxy)),
		Task(r.Task),
	)
}

// Canonical returns the canonical JSON form of Receipt(r).
func Canonical(r *task.TaskReceipt) ([]byte, error) {
	return ir.MarshalCanonical(Receipt(r))
}
