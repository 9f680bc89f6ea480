package task

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/gelato/internal/ir"
)

var (
	uintType      = reflect.TypeOf(ir.IRUint{})
	operationType = reflect.TypeOf(Operation(0))
	bytesType     = reflect.TypeOf(Bytes(""))
)

// BuildTaskReceipt validates raw fields and assembles a TaskReceipt with
// defaults applied. It either returns a fully valid receipt or an error;
// never a partial value.
func BuildTaskReceipt(fields Fields) (*TaskReceipt, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	var r TaskReceipt
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: decodeHook,
		Result:     &r,
		TagName:    "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(fields)); err != nil {
		return nil, newValidationError(KindInvalidField, "", "failed to decode receipt: %v", err)
	}

	r.Task.applyDefaults()
	return &r, nil
}

// NewTaskReceipt assembles a receipt from typed values. The task is copied,
// so later changes to t do not affect the receipt.
func NewTaskReceipt(id ir.IRUint, userProxy Address, t *Task) (*TaskReceipt, error) {
	r := &TaskReceipt{
		ID:        id,
		UserProxy: userProxy,
		Task:      t.clone(),
	}
	if err := Validate(r); err != nil {
		return nil, err
	}
	r.Task.applyDefaults()
	return r, nil
}

// decodeHook converts leaf values that mapstructure cannot handle natively.
// ValidateFields has already accepted every value it sees.
func decodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case uintType:
		return ir.ParseUint(data)
	case operationType:
		return ParseOperation(data)
	case bytesType:
		if b, ok := data.([]byte); ok {
			return Bytes("0x" + hex.EncodeToString(b)), nil
		}
	}
	return data, nil
}

// MapAddresses returns a copy of r with every address field passed through
// fn: the user proxy, provider addr and module, condition inst and action
// addr, in base then cycle order. path names the field being mapped, e.g.
// "task.cycle[0].actions[1].addr". The result is validated again.
func (r *TaskReceipt) MapAddresses(fn func(path string, addr Address) (Address, error)) (*TaskReceipt, error) {
	out := &TaskReceipt{
		ID:        r.ID,
		UserProxy: r.UserProxy,
		Task:      r.Task.clone(),
	}

	var err error
	mapOne := func(path string, addr *Address) {
		if err != nil {
			return
		}
		var mapped Address
		mapped, err = fn(path, *addr)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
			return
		}
		*addr = mapped
	}

	mapOne("userProxy", &out.UserProxy)
	if out.Task != nil {
		mapBase := func(b *TaskBase, path string) {
			mapOne(path+".provider.addr", &b.Provider.Addr)
			mapOne(path+".provider.module", &b.Provider.Module)
			for i := range b.Conditions {
				mapOne(fmt.Sprintf("%s.conditions[%d].inst", path, i), &b.Conditions[i].Inst)
			}
			for i := range b.Actions {
				mapOne(fmt.Sprintf("%s.actions[%d].addr", path, i), &b.Actions[i].Addr)
			}
		}
		mapBase(&out.Task.Base, "task.base")
		for i := range out.Task.Cycle {
			mapBase(&out.Task.Cycle[i], fmt.Sprintf("task.cycle[%d]", i))
		}
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}
