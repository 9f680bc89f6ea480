// Package testutil holds fixtures shared by package tests: sample receipts,
// a fixed batch ID generator, and a golden-file helper for encoded arrays.
package testutil

import (
	"fmt"

	"github.com/roach88/gelato/internal/ir"
	"github.com/roach88/gelato/internal/task"
)

// ScenarioAFields returns the smallest valid receipt definition: one step,
// one action, no conditions, no cycle.
func ScenarioAFields() task.Fields {
	return task.Fields{
		"userProxy": "0xAA",
		"task": map[string]any{
			"base": map[string]any{
				"provider": map[string]any{"addr": "0xBB", "module": "0x0"},
				"actions": []any{
					map[string]any{
						"addr":         "0xCC",
						"data":         "0x",
						"operation":    task.Call,
						"value":        0,
						"termsOkCheck": false,
					},
				},
			},
		},
	}
}

// ScenarioA returns the receipt built from ScenarioAFields.
func ScenarioA() *task.TaskReceipt {
	return MustBuild(ScenarioAFields())
}

// StepX returns a self-managed cycle step with one condition and one call action.
func StepX() task.TaskBase {
	return task.TaskBase{
		Provider:   task.Provider{Addr: "0x0000000000000000000000000000000000000B01", Module: task.ZeroAddress},
		Conditions: []task.Condition{{Inst: "0x0000000000000000000000000000000000000C01", Data: "0x1234"}},
		Actions: []task.Action{{
			Addr:         "0x0000000000000000000000000000000000000A01",
			Data:         "0xa9059cbb",
			Operation:    task.Call,
			TermsOkCheck: true,
		}},
		ExpiryDate:       ir.MustIRUint("1700000000"),
		AutoResubmitSelf: true,
	}
}

// StepY returns an unconditional delegatecall step, distinct from StepX.
func StepY() task.TaskBase {
	return task.TaskBase{
		Provider:   task.Provider{Addr: "0x0000000000000000000000000000000000000B02", Module: "0x0000000000000000000000000000000000000D02"},
		Conditions: []task.Condition{},
		Actions: []task.Action{{
			Addr:      "0x0000000000000000000000000000000000000A02",
			Data:      "0x",
			Operation: task.Delegatecall,
			Value:     ir.MustIRUint("1000000000000000000"),
		}},
	}
}

// CyclingReceipt returns a receipt whose base is StepX and whose cycle is
// [StepX, StepY], with id 7 and next 1.
func CyclingReceipt() *task.TaskReceipt {
	r, err := task.NewTaskReceipt(ir.MustIRUint("7"), "0x00000000000000000000000000000000000000AA", &task.Task{
		Base:  StepX(),
		Next:  ir.MustIRUint("1"),
		Cycle: []task.TaskBase{StepX(), StepY()},
	})
	if err != nil {
		panic(fmt.Sprintf("testutil: cycling receipt: %v", err))
	}
	return r
}

// MustBuild is task.BuildTaskReceipt that panics on error.
func MustBuild(fields task.Fields) *task.TaskReceipt {
	r, err := task.BuildTaskReceipt(fields)
	if err != nil {
		panic(fmt.Sprintf("testutil: build receipt: %v", err))
	}
	return r
}
