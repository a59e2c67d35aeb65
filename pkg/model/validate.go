package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errFormNameMissing  = errors.New("model: form name is required")
	errFormBaseMissing  = errors.New("model: base id is required")
	errFormTableMissing = errors.New("model: table id is required")
)

// ValidateForm checks a form document before it is saved. Evaluation never
// depends on this check: documents that bypass it still evaluate, with
// unknown operators resolving to a false condition.
func ValidateForm(form Form) error {
	if strings.TrimSpace(form.Name) == "" {
		return errFormNameMissing
	}
	if strings.TrimSpace(form.BaseID) == "" {
		return errFormBaseMissing
	}
	if strings.TrimSpace(form.TableID) == "" {
		return errFormTableMissing
	}
	return ValidateFields(form.Fields)
}

// ValidateFields checks the field list of a form.
func ValidateFields(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		if strings.TrimSpace(field.FieldID) == "" {
			return fmt.Errorf("model: field %d: field id is required", idx)
		}
		if _, dup := seen[field.FieldID]; dup {
			return fmt.Errorf("model: field %q: duplicate field id", field.FieldID)
		}
		seen[field.FieldID] = struct{}{}

		if strings.TrimSpace(field.FieldName) == "" {
			return fmt.Errorf("model: field %q: field name is required", field.FieldID)
		}
		if strings.TrimSpace(field.QuestionLabel) == "" {
			return fmt.Errorf("model: field %q: question label is required", field.FieldID)
		}
		if !field.Type.Valid() {
			return fmt.Errorf("model: field %q: unsupported type %q", field.FieldID, field.Type)
		}
		if err := validateRule(field.ShowWhen); err != nil {
			return fmt.Errorf("model: field %q: %w", field.FieldID, err)
		}
	}
	return nil
}

func validateRule(rule *VisibilityRule) error {
	if rule == nil {
		return nil
	}
	switch rule.Mode {
	case "", ModeAll, ModeAny:
	default:
		return fmt.Errorf("unsupported mode %q", rule.Mode)
	}
	for idx, cond := range rule.Conditions {
		if strings.TrimSpace(cond.FieldID) == "" {
			return fmt.Errorf("condition %d: field id is required", idx)
		}
		if !cond.Operator.Known() {
			return fmt.Errorf("condition %d: unsupported operator %q", idx, cond.Operator)
		}
	}
	return nil
}
