package visibility

import "github.com/goliatone/go-airforms/pkg/model"

// Rules evaluates a field's showWhen rule against literal answer values.
// A field's visibility never depends on whether another field is visible.
type Rules struct{}

// Visible reports whether field passes its showWhen rule.
func (Rules) Visible(field model.Field, answers model.Answers) bool {
	return EvalRule(field.ShowWhen, answers)
}

// EvalRule reports whether rule holds. A nil rule or an empty condition list
// always holds. ModeAny is a disjunction; every other mode, including an
// empty or unknown one, is a conjunction.
func EvalRule(rule *model.VisibilityRule, answers model.Answers) bool {
	if rule == nil || len(rule.Conditions) == 0 {
		return true
	}
	if rule.Mode == model.ModeAny {
		for _, cond := range rule.Conditions {
			if EvalCondition(cond, answers) {
				return true
			}
		}
		return false
	}
	for _, cond := range rule.Conditions {
		if !EvalCondition(cond, answers) {
			return false
		}
	}
	return true
}

// EvalCondition compares the referenced answer against cond.Value.
//
//   - equals / not_equals: exact string comparison. An absent or list answer
//     never equals a string, not even "".
//   - includes: the answer is a list containing the value.
//   - not_includes: the answer is not a list, or a list without the value.
//   - any other operator is never satisfied.
func EvalCondition(cond model.Condition, answers model.Answers) bool {
	answer := answers.Get(cond.FieldID)
	switch cond.Operator {
	case model.OperatorEquals:
		return textEquals(answer, cond.Value)
	case model.OperatorNotEquals:
		return !textEquals(answer, cond.Value)
	case model.OperatorIncludes:
		return answer.Contains(cond.Value)
	case model.OperatorNotIncludes:
		return !answer.Contains(cond.Value)
	default:
		return false
	}
}

func textEquals(answer model.Answer, value string) bool {
	text, ok := answer.AsText()
	return ok && text == value
}
