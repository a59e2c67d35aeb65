package visibility

import (
	"sort"

	"github.com/goliatone/go-airforms/pkg/model"
)

// Errors maps field ids to a user-facing message.
type Errors map[string]string

// Empty reports whether there are no violations.
func (e Errors) Empty() bool { return len(e) == 0 }

// FieldIDs returns the ids carrying an error, sorted.
func (e Errors) FieldIDs() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RequiredMessage is the message emitted for a missing required answer. The
// label is kept verbatim.
func RequiredMessage(label string) string {
	return label + " is required"
}

// Validate reports every required field that is currently visible and has
// no answer. Hidden fields are never checked. The result is never nil.
func Validate(fields []model.Field, answers model.Answers) Errors {
	return ValidateWith(Rules{}, fields, answers)
}

// ValidateWith is Validate using a custom evaluator.
func ValidateWith(evaluator Evaluator, fields []model.Field, answers model.Answers) Errors {
	errs := Errors{}
	for _, field := range Filter(evaluator, fields, answers) {
		if !field.Required {
			continue
		}
		if answers.Get(field.FieldID).Empty() {
			errs[field.FieldID] = RequiredMessage(field.QuestionLabel)
		}
	}
	return errs
}
