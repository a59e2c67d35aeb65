// Package airforms is the entry point for embedding the form evaluator:
// load a form document, compute which questions are visible for a set of
// answers, and check required answers the same way the public submission
// path does.
package airforms

import (
	"context"
	"net/http"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/record"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

// Form aliases model.Form for callers that only import the root package.
type Form = model.Form

// Field aliases model.Field.
type Field = model.Field

// Answers aliases model.Answers.
type Answers = model.Answers

// Errors aliases visibility.Errors.
type Errors = visibility.Errors

// Evaluation is the outcome of evaluating a form against answers.
type Evaluation struct {
	Visible []Field
	Hidden  int
	Errors  Errors
	Record  map[string]any
}

// Evaluate computes visibility, required errors and the Airtable record the
// answers would produce.
func Evaluate(form Form, answers Answers) Evaluation {
	visible := visibility.VisibleFields(form.Fields, answers)
	return Evaluation{
		Visible: visible,
		Hidden:  len(form.Fields) - len(visible),
		Errors:  visibility.Validate(form.Fields, answers),
		Record:  record.FromVisible(visible, answers),
	}
}

// LoadForm reads a form from a file path or http(s) URL.
func LoadForm(ctx context.Context, location string, options ...formfile.Option) (Form, error) {
	src, err := formfile.ParseSource(location)
	if err != nil {
		return Form{}, err
	}
	opts := append([]formfile.Option{formfile.WithHTTPClient(http.DefaultClient)}, options...)
	return formfile.New(opts...).LoadForm(ctx, src)
}

// LoadAnswers reads an answer set from a file path or http(s) URL.
func LoadAnswers(ctx context.Context, location string, options ...formfile.Option) (Answers, error) {
	src, err := formfile.ParseSource(location)
	if err != nil {
		return nil, err
	}
	opts := append([]formfile.Option{formfile.WithHTTPClient(http.DefaultClient)}, options...)
	return formfile.New(opts...).LoadAnswers(ctx, src)
}
