package visibility

import "github.com/goliatone/go-airforms/pkg/model"

// VisibleFields returns the subsequence of fields whose showWhen rule holds
// for answers, preserving input order.
func VisibleFields(fields []model.Field, answers model.Answers) []model.Field {
	return Filter(Rules{}, fields, answers)
}

// Filter applies evaluator to each field independently and keeps the visible
// ones in their original order. A nil evaluator keeps every field.
func Filter(evaluator Evaluator, fields []model.Field, answers model.Answers) []model.Field {
	result := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if evaluator != nil && !evaluator.Visible(field, answers) {
			continue
		}
		result = append(result, field)
	}
	return result
}

// HiddenCount reports how many fields the rules currently hide.
func HiddenCount(fields []model.Field, answers model.Answers) int {
	return len(fields) - len(VisibleFields(fields, answers))
}
