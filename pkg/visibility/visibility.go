package visibility

import "github.com/goliatone/go-airforms/pkg/model"

// Evaluator determines whether a field should be visible given the answers
// entered so far. Implementations must be pure: the same field and answers
// always produce the same result.
type Evaluator interface {
	Visible(field model.Field, answers model.Answers) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, answers model.Answers) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field model.Field, answers model.Answers) bool {
	return fn(field, answers)
}

// Default returns the showWhen rule evaluator shared by the preview and
// submission paths.
func Default() Evaluator { return Rules{} }
