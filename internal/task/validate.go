package task

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/roach88/gelato/internal/ir"
)

// ValidateFields checks raw receipt fields and returns the first violation,
// or nil. Structural rules run before any leaf value is inspected, so a
// receipt with both a bad shape and a bad number reports the shape.
//
// ValidateFields never mutates fields.
func ValidateFields(fields Fields) error {
	if err := validateShape(fields); err != nil {
		return err
	}
	return validateLeaves(fields)
}

// validateShape applies the structural rules in priority order.
func validateShape(fields Fields) error {
	if _, ok := nonEmptyString(fields, "userProxy"); !ok {
		return newValidationError(KindMissingUserProxy, "userProxy",
			"user proxy address is required")
	}

	rawTask, ok := present(fields, "task")
	if !ok {
		return newValidationError(KindMissingTask, "task", "task is required")
	}
	taskMap, ok := asMapping(rawTask)
	if !ok {
		return newValidationError(KindMissingTask, "task",
			"task must be a mapping, got %s", describe(rawTask))
	}

	rawBase, ok := present(taskMap, "base")
	if !ok {
		return newValidationError(KindMissingTask, "task.base", "task base step is required")
	}
	base, ok := asMapping(rawBase)
	if !ok {
		return newValidationError(KindMissingTask, "task.base",
			"task base must be a mapping, got %s", describe(rawBase))
	}
	if err := validateBaseShape(base, "task.base"); err != nil {
		return err
	}

	rawCycle, ok := present(taskMap, "cycle")
	if !ok {
		return nil
	}
	cycle, ok := asSequence(rawCycle)
	if !ok {
		return newValidationError(KindInvalidCycleShape, "task.cycle",
			"cycle must be a sequence of task steps, got %s", describe(rawCycle))
	}
	for i, entry := range cycle {
		path := fmt.Sprintf("task.cycle[%d]", i)
		step, ok := asMapping(entry)
		if !ok {
			return newValidationError(KindInvalidCycleShape, path,
				"cycle entry must be a task step mapping, got %s", describe(entry))
		}
		if err := validateBaseShape(step, path); err != nil {
			return err
		}
	}
	return nil
}

func validateBaseShape(base map[string]any, path string) error {
	rawProvider, ok := present(base, "provider")
	if !ok {
		return newValidationError(KindMissingProvider, path+".provider", "provider is required")
	}
	provider, ok := asMapping(rawProvider)
	if !ok {
		return newValidationError(KindMissingProvider, path+".provider",
			"provider must be a mapping, got %s", describe(rawProvider))
	}
	if _, ok := nonEmptyString(provider, "addr"); !ok {
		return newValidationError(KindMissingProvider, path+".provider.addr",
			"provider address is required")
	}

	if rawConditions, ok := present(base, "conditions"); ok {
		if _, ok := asSequence(rawConditions); !ok {
			return newValidationError(KindInvalidConditionsShape, path+".conditions",
				"conditions must be a sequence, got %s", describe(rawConditions))
		}
	}

	rawActions, ok := present(base, "actions")
	if !ok {
		return newValidationError(KindInvalidOrEmptyActions, path+".actions",
			"at least one action is required")
	}
	actions, ok := asSequence(rawActions)
	if !ok {
		return newValidationError(KindInvalidOrEmptyActions, path+".actions",
			"actions must be a sequence, got %s", describe(rawActions))
	}
	if len(actions) == 0 {
		return newValidationError(KindInvalidOrEmptyActions, path+".actions",
			"at least one action is required")
	}

	if rawAuto, ok := present(base, "autoResubmitSelf"); ok {
		if _, ok := rawAuto.(bool); !ok {
			return newValidationError(KindInvalidAutoResubmitType, path+".autoResubmitSelf",
				"autoResubmitSelf must be a boolean, got %s", describe(rawAuto))
		}
	}
	return nil
}

// validateLeaves checks scalar values. It assumes validateShape passed.
func validateLeaves(fields Fields) error {
	taskMap, _ := asMapping(fields["task"])

	if rawNext, ok := present(taskMap, "next"); ok {
		if _, err := ir.ParseUint(rawNext); err != nil {
			return newValidationError(KindInvalidNextType, "task.next",
				"next must be an unsigned integer: %v", err)
		}
	}
	if rawID, ok := present(fields, "id"); ok {
		if _, err := ir.ParseUint(rawID); err != nil {
			return newValidationError(KindInvalidNumber, "id", "%v", err)
		}
	}

	base, _ := asMapping(taskMap["base"])
	if err := validateBaseLeaves(base, "task.base"); err != nil {
		return err
	}
	if rawCycle, ok := present(taskMap, "cycle"); ok {
		cycle, _ := asSequence(rawCycle)
		for i, entry := range cycle {
			step, _ := asMapping(entry)
			if err := validateBaseLeaves(step, fmt.Sprintf("task.cycle[%d]", i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBaseLeaves(base map[string]any, path string) error {
	provider, _ := asMapping(base["provider"])
	if err := checkAddress(provider, "addr", path+".provider"); err != nil {
		return err
	}
	if err := checkAddress(provider, "module", path+".provider"); err != nil {
		return err
	}

	if raw, ok := present(base, "expiryDate"); ok {
		if _, err := ir.ParseUint(raw); err != nil {
			return newValidationError(KindInvalidNumber, path+".expiryDate", "%v", err)
		}
	}

	if rawConditions, ok := present(base, "conditions"); ok {
		conditions, _ := asSequence(rawConditions)
		for i, entry := range conditions {
			condPath := fmt.Sprintf("%s.conditions[%d]", path, i)
			cond, ok := asMapping(entry)
			if !ok {
				return newValidationError(KindInvalidField, condPath,
					"condition must be a mapping, got %s", describe(entry))
			}
			if err := checkAddress(cond, "inst", condPath); err != nil {
				return err
			}
			if err := checkBytes(cond, "data", condPath); err != nil {
				return err
			}
		}
	}

	actions, _ := asSequence(base["actions"])
	for i, entry := range actions {
		if err := validateActionLeaves(entry, fmt.Sprintf("%s.actions[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateActionLeaves(entry any, path string) error {
	action, ok := asMapping(entry)
	if !ok {
		return newValidationError(KindInvalidField, path,
			"action must be a mapping, got %s", describe(entry))
	}
	if _, ok := nonEmptyString(action, "addr"); !ok {
		return newValidationError(KindInvalidField, path+".addr", "action address is required")
	}
	if err := checkBytes(action, "data", path); err != nil {
		return err
	}
	if raw, ok := present(action, "operation"); ok {
		if _, err := ParseOperation(raw); err != nil {
			return newValidationError(KindInvalidOperation, path+".operation", "%v", err)
		}
	}
	if raw, ok := present(action, "value"); ok {
		if _, err := ir.ParseUint(raw); err != nil {
			return newValidationError(KindInvalidNumber, path+".value", "%v", err)
		}
	}
	if raw, ok := present(action, "termsOkCheck"); ok {
		if _, ok := raw.(bool); !ok {
			return newValidationError(KindInvalidField, path+".termsOkCheck",
				"termsOkCheck must be a boolean, got %s", describe(raw))
		}
	}
	return nil
}

func checkAddress(m map[string]any, key, path string) error {
	raw, ok := present(m, key)
	if !ok {
		return nil
	}
	if _, ok := asString(raw); !ok {
		return newValidationError(KindInvalidField, path+"."+key,
			"%s must be an address string, got %s", key, describe(raw))
	}
	return nil
}

func checkBytes(m map[string]any, key, path string) error {
	raw, ok := present(m, key)
	if !ok {
		return nil
	}
	if _, isBytes := raw.([]byte); isBytes {
		return nil
	}
	s, ok := asString(raw)
	if !ok {
		return newValidationError(KindInvalidField, path+"."+key,
			"%s must be a hex string or bytes, got %s", key, describe(raw))
	}
	if s == "" {
		return nil
	}
	if err := checkHexPayload(s); err != nil {
		return newValidationError(KindInvalidField, path+"."+key, "%s %v, got %q", key, err, s)
	}
	return nil
}

// checkHexPayload reports why s is not 0x-prefixed hex of whole bytes.
func checkHexPayload(s string) error {
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("must be 0x-prefixed")
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return fmt.Errorf("must have an even number of hex digits")
	}
	if _, err := hex.DecodeString(digits); err != nil {
		return fmt.Errorf("must be hex")
	}
	return nil
}

// describe names the dynamic type of a raw value for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if _, ok := asSequence(v); ok {
		return "sequence"
	}
	if _, ok := asMapping(v); ok {
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}

// Validate applies the construction rules to a receipt assembled in Go.
// It reports the same kinds, in the same order, as ValidateFields.
func Validate(r *TaskReceipt) error {
	if r == nil || strings.TrimSpace(string(r.UserProxy)) == "" {
		return newValidationError(KindMissingUserProxy, "userProxy",
			"user proxy address is required")
	}
	if r.Task == nil {
		return newValidationError(KindMissingTask, "task", "task is required")
	}
	if err := validateBase(r.Task.Base, "task.base"); err != nil {
		return err
	}
	for i, step := range r.Task.Cycle {
		if err := validateBase(step, fmt.Sprintf("task.cycle[%d]", i)); err != nil {
			return err
		}
	}

	for i, step := range r.Task.Steps() {
		path := "task.base"
		if i > 0 {
			path = fmt.Sprintf("task.cycle[%d]", i-1)
		}
		for j, a := range step.Actions {
			actionPath := fmt.Sprintf("%s.actions[%d]", path, j)
			if strings.TrimSpace(string(a.Addr)) == "" {
				return newValidationError(KindInvalidField, actionPath+".addr",
					"action address is required")
			}
			if !a.Operation.Valid() {
				return newValidationError(KindInvalidOperation, actionPath+".operation",
					"unknown operation %d", uint8(a.Operation))
			}
			if a.Data != "" {
				if err := checkHexPayload(string(a.Data)); err != nil {
					return newValidationError(KindInvalidField, actionPath+".data", "data %v, got %q", err, a.Data)
				}
			}
		}
		for j, c := range step.Conditions {
			if c.Data != "" {
				if err := checkHexPayload(string(c.Data)); err != nil {
					return newValidationError(KindInvalidField, fmt.Sprintf("%s.conditions[%d].data", path, j),
						"data %v, got %q", err, c.Data)
				}
			}
		}
	}
	return nil
}

func validateBase(b TaskBase, path string) error {
	if strings.TrimSpace(string(b.Provider.Addr)) == "" {
		return newValidationError(KindMissingProvider, path+".provider.addr",
			"provider address is required")
	}
	if len(b.Actions) == 0 {
		return newValidationError(KindInvalidOrEmptyActions, path+".actions",
			"at least one action is required")
	}
	return nil
}
