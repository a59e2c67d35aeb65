// Package tui walks a respondent through a form in the terminal, asking only
// the questions that are visible given the answers so far.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

const skipOption = "(skip)"

// Option configures a Walkthrough.
type Option func(*Walkthrough)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(w *Walkthrough) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithEvaluator overrides the visibility evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(w *Walkthrough) {
		if evaluator != nil {
			w.evaluator = evaluator
		}
	}
}

// Walkthrough prompts the visible fields of a form in order.
type Walkthrough struct {
	driver    PromptDriver
	evaluator visibility.Evaluator
}

// Result is the state of the form once every visible field was asked.
type Result struct {
	Answers model.Answers
	Visible []model.Field
	Hidden  int
	Errors  visibility.Errors
}

// New builds a Walkthrough. Without WithPromptDriver, Run fails with
// ErrNoDriver.
func New(options ...Option) *Walkthrough {
	w := &Walkthrough{evaluator: visibility.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run asks each visible field once. Visibility is recomputed after every
// answer, so a field revealed by a later answer is asked next even when it
// sits earlier in the form.
func (w *Walkthrough) Run(ctx context.Context, form model.Form, seed model.Answers) (Result, error) {
	if w.driver == nil {
		return Result{}, ErrNoDriver
	}

	fields := model.NormalizeOrder(form.Fields)
	answers := seed.Clone()
	asked := make(map[string]bool, len(fields))
	hidden := len(fields) - len(visibility.Filter(w.evaluator, fields, answers))

	for {
		next, ok := w.nextField(fields, answers, asked)
		if !ok {
			break
		}
		asked[next.FieldID] = true

		answer, err := w.ask(ctx, next)
		if err != nil {
			return Result{}, err
		}
		if answer.Present() {
			answers[next.FieldID] = answer
		} else {
			delete(answers, next.FieldID)
		}

		nowHidden := len(fields) - len(visibility.Filter(w.evaluator, fields, answers))
		if nowHidden != hidden {
			if err := w.driver.Info(ctx, fmt.Sprintf("%d of %d fields hidden", nowHidden, len(fields))); err != nil {
				return Result{}, err
			}
			hidden = nowHidden
		}
	}

	visible := visibility.Filter(w.evaluator, fields, answers)
	return Result{
		Answers: answers,
		Visible: visible,
		Hidden:  len(fields) - len(visible),
		Errors:  visibility.ValidateWith(w.evaluator, fields, answers),
	}, nil
}

func (w *Walkthrough) nextField(fields []model.Field, answers model.Answers, asked map[string]bool) (model.Field, bool) {
	for _, field := range visibility.Filter(w.evaluator, fields, answers) {
		if !asked[field.FieldID] {
			return field, true
		}
	}
	return model.Field{}, false
}

func (w *Walkthrough) ask(ctx context.Context, field model.Field) (model.Answer, error) {
	message := field.QuestionLabel
	if field.Required {
		message += " *"
	}
	required := visibility.RequiredMessage(field.QuestionLabel)

	switch field.Type {
	case model.FieldTypeSingleSelect:
		options := field.Options
		if !field.Required {
			options = append([]string{skipOption}, field.Options...)
		}
		idx, err := w.driver.Select(ctx, SelectConfig{Message: message, Options: options, Help: field.FieldName})
		if err != nil {
			return model.Answer{}, err
		}
		if idx < 0 || idx >= len(options) || options[idx] == skipOption {
			return model.Answer{}, nil
		}
		return model.Text(options[idx]), nil

	case model.FieldTypeMultiSelect:
		for {
			picked, err := w.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: field.Options, Help: field.FieldName})
			if err != nil {
				return model.Answer{}, err
			}
			values := make([]string, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(field.Options) {
					values = append(values, field.Options[idx])
				}
			}
			if len(values) > 0 {
				return model.List(values...), nil
			}
			if !field.Required {
				return model.Answer{}, nil
			}
			if err := w.driver.Info(ctx, required); err != nil {
				return model.Answer{}, err
			}
		}

	case model.FieldTypeLongText:
		for {
			text, err := w.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: field.FieldName})
			if err != nil {
				return model.Answer{}, err
			}
			if text != "" {
				return model.Text(text), nil
			}
			if !field.Required {
				return model.Answer{}, nil
			}
			if err := w.driver.Info(ctx, required); err != nil {
				return model.Answer{}, err
			}
		}

	case model.FieldTypeAttachment:
		raw, err := w.driver.Input(ctx, InputConfig{
			Message:   message,
			Help:      "Comma separated URLs",
			Validator: requiredValidator(field, splitURLs),
		})
		if err != nil {
			return model.Answer{}, err
		}
		urls := splitURLs(raw)
		if len(urls) == 0 {
			return model.Answer{}, nil
		}
		return model.List(urls...), nil

	default:
		text, err := w.driver.Input(ctx, InputConfig{
			Message:   message,
			Help:      field.FieldName,
			Validator: requiredValidator(field, func(s string) []string { return nonEmpty(s) }),
		})
		if err != nil {
			return model.Answer{}, err
		}
		if text == "" {
			return model.Answer{}, nil
		}
		return model.Text(text), nil
	}
}

func requiredValidator(field model.Field, values func(string) []string) func(string) error {
	if !field.Required {
		return nil
	}
	message := visibility.RequiredMessage(field.QuestionLabel)
	return func(input string) error {
		if len(values(input)) == 0 {
			return errors.New(message)
		}
		return nil
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func splitURLs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
