package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gelato/internal/ir"
)

// ZeroAddress is used for self-managed providers and unconditional steps.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// EmptyBytes is the empty calldata payload.
const EmptyBytes Bytes = "0x"

// Address is an address-shaped string. No checksum or length is enforced here.
type Address string

// Bytes is a 0x-prefixed hex payload.
type Bytes string

// Operation selects how an action is executed by the user proxy.
type Operation uint8

const (
	// Call executes the action with a regular call.
	Call Operation = iota
	// Delegatecall executes the action in the user proxy's context.
	Delegatecall
)

// String returns the enum name.
func (o Operation) String() string {
	switch o {
	case Call:
		return "Call"
	case Delegatecall:
		return "Delegatecall"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// Valid reports whether o is one of the two contract variants.
func (o Operation) Valid() bool {
	return o == Call || o == Delegatecall
}

// ParseOperation accepts the enum ordinal (0, 1) or its name, case-insensitive.
func ParseOperation(v any) (Operation, error) {
	switch val := v.(type) {
	case Operation:
		if !val.Valid() {
			return 0, fmt.Errorf("unknown operation %d", uint8(val))
		}
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "call", "0":
			return Call, nil
		case "delegatecall", "1":
			return Delegatecall, nil
		}
		return 0, fmt.Errorf("unknown operation %q", val)
	}

	n, err := ir.ParseUint(v)
	if err != nil {
		return 0, fmt.Errorf("operation must be 0, 1, call or delegatecall: %w", err)
	}
	switch n {
	case ir.NewIRUint(0):
		return Call, nil
	case ir.NewIRUint(1):
		return Delegatecall, nil
	}
	return 0, fmt.Errorf("unknown operation %s", n)
}

// Provider is the entity paying for and vouching for a task's execution.
type Provider struct {
	Addr   Address `json:"addr" mapstructure:"addr"`
	Module Address `json:"module" mapstructure:"module"` // ZeroAddress for self-providers
}

// Condition gates a step; ZeroAddress inst with empty data is unconditional.
type Condition struct {
	Inst Address `json:"inst" mapstructure:"inst"`
	Data Bytes   `json:"data" mapstructure:"data"`
}

// Action is one call performed by the user proxy when the step executes.
type Action struct {
	Addr         Address   `json:"addr" mapstructure:"addr"`
	Data         Bytes     `json:"data" mapstructure:"data"`
	Operation    Operation `json:"operation" mapstructure:"operation"`
	Value        ir.IRUint `json:"value" mapstructure:"value"`
	TermsOkCheck bool      `json:"termsOkCheck" mapstructure:"termsOkCheck"`
}

// TaskBase is one executable step: who pays, when it may run, what it does.
type TaskBase struct {
	Provider         Provider    `json:"provider" mapstructure:"provider"`
	Conditions       []Condition `json:"conditions" mapstructure:"conditions"`
	Actions          []Action    `json:"actions" mapstructure:"actions"`
	ExpiryDate       ir.IRUint   `json:"expiryDate" mapstructure:"expiryDate"`
	AutoResubmitSelf bool        `json:"autoResubmitSelf" mapstructure:"autoResubmitSelf"`
}

// Task is a base step plus the resubmission chain state.
type Task struct {
	Base  TaskBase   `json:"base" mapstructure:"base"`
	Next  ir.IRUint  `json:"next" mapstructure:"next"`   // Cycle index the executor resubmits next
	Cycle []TaskBase `json:"cycle" mapstructure:"cycle"` // Empty when the task does not cycle
}

// TaskReceipt is the identity-bearing unit tracked by the execution engine.
type TaskReceipt struct {
	ID        ir.IRUint `json:"id" mapstructure:"id"`
	UserProxy Address   `json:"userProxy" mapstructure:"userProxy"`
	Task      *Task     `json:"task" mapstructure:"task"`
}

// clone returns a deep copy so callers cannot mutate a validated receipt
// through slices they still hold.
func (b TaskBase) clone() TaskBase {
	b.Conditions = slices.Clone(b.Conditions)
	b.Actions = slices.Clone(b.Actions)
	return b
}

func (t *Task) clone() *Task {
	if t == nil {
		return nil
	}
	out := &Task{
		Base: t.Base.clone(),
		Next: t.Next,
	}
	out.Cycle = make([]TaskBase, len(t.Cycle))
	for i, b := range t.Cycle {
		out.Cycle[i] = b.clone()
	}
	return out
}

// applyDefaults fills fields that are optional in definitions.
func (b *TaskBase) applyDefaults() {
	if b.Provider.Module == "" {
		b.Provider.Module = ZeroAddress
	}
	if b.Conditions == nil {
		b.Conditions = []Condition{}
	}
	for i := range b.Conditions {
		if b.Conditions[i].Inst == "" {
			b.Conditions[i].Inst = ZeroAddress
		}
		if b.Conditions[i].Data == "" {
			b.Conditions[i].Data = EmptyBytes
		}
	}
	for i := range b.Actions {
		if b.Actions[i].Data == "" {
			b.Actions[i].Data = EmptyBytes
		}
	}
}

func (t *Task) applyDefaults() {
	t.Base.applyDefaults()
	if t.Cycle == nil {
		t.Cycle = []TaskBase{}
	}
	for i := range t.Cycle {
		t.Cycle[i].applyDefaults()
	}
}

// Steps returns the base followed by every cycle entry, in order.
func (t *Task) Steps() []TaskBase {
	steps := make([]TaskBase, 0, 1+len(t.Cycle))
	steps = append(steps, t.Base)
	return append(steps, t.Cycle...)
}
