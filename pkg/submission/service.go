// Package submission implements the public submission path: validate the
// visible fields, write the record to Airtable, and keep a local copy.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/record"
	"github.com/goliatone/go-airforms/pkg/store"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

// ErrOwnerNotFound reports a form whose owner account no longer exists.
var ErrOwnerNotFound = errors.New("submission: form owner not found")

// ValidationError rejects a submission. Fields maps field ids to messages;
// it is a user-correctable outcome, not a system fault.
type ValidationError struct {
	Fields visibility.Errors
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, id := range e.Fields.FieldIDs() {
		messages = append(messages, e.Fields[id])
	}
	return "submission: validation failed: " + strings.Join(messages, "; ")
}

// Messages returns the field messages in field id order.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, id := range e.Fields.FieldIDs() {
		out = append(out, e.Fields[id])
	}
	return out
}

// RecordWriter creates Airtable records on behalf of a form owner.
type RecordWriter interface {
	CreateRecord(ctx context.Context, owner model.User, baseID, tableID string, fields map[string]any) (airtable.Record, error)
}

// RecordWriterFunc adapts a function into a RecordWriter.
type RecordWriterFunc func(ctx context.Context, owner model.User, baseID, tableID string, fields map[string]any) (airtable.Record, error)

// CreateRecord delegates to the underlying function.
func (fn RecordWriterFunc) CreateRecord(ctx context.Context, owner model.User, baseID, tableID string, fields map[string]any) (airtable.Record, error) {
	return fn(ctx, owner, baseID, tableID, fields)
}

// Result describes an accepted submission.
type Result struct {
	RecordID     string `json:"recordId"`
	SubmissionID string `json:"submissionId"`
}

// Preview is the live state of a partially filled form.
type Preview struct {
	Visible []model.Field     `json:"visible"`
	Hidden  int               `json:"hidden"`
	Errors  visibility.Errors `json:"errors"`
}

// Option customises a Service.
type Option func(*Service)

// WithEvaluator swaps the visibility evaluator; preview and submit always
// share it.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Service) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service accepts public submissions.
type Service struct {
	forms       store.Forms
	submissions store.Submissions
	users       store.Users
	writer      RecordWriter
	evaluator   visibility.Evaluator
	logger      *slog.Logger
}

// NewService wires a Service.
func NewService(forms store.Forms, submissions store.Submissions, users store.Users, writer RecordWriter, options ...Option) *Service {
	s := &Service{
		forms:       forms,
		submissions: submissions,
		users:       users,
		writer:      writer,
		evaluator:   visibility.Default(),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Evaluate computes the preview state of form for answers.
func (s *Service) Evaluate(form model.Form, answers model.Answers) Preview {
	visible := visibility.Filter(s.evaluator, form.Fields, answers)
	return Preview{
		Visible: visible,
		Hidden:  len(form.Fields) - len(visible),
		Errors:  visibility.ValidateWith(s.evaluator, form.Fields, answers),
	}
}

// Preview loads a form and evaluates answers against it.
func (s *Service) Preview(ctx context.Context, formID string, answers model.Answers) (Preview, error) {
	form, err := s.forms.GetForm(ctx, formID)
	if err != nil {
		return Preview{}, fmt.Errorf("submission: load form: %w", err)
	}
	return s.Evaluate(form, answers), nil
}

// Submit validates answers and, when they pass, writes the visible fields to
// the form's Airtable table. A rejected submission returns *ValidationError
// and never reaches Airtable.
func (s *Service) Submit(ctx context.Context, formID string, answers model.Answers) (Result, error) {
	form, err := s.forms.GetForm(ctx, formID)
	if err != nil {
		return Result{}, fmt.Errorf("submission: load form: %w", err)
	}

	if errs := visibility.ValidateWith(s.evaluator, form.Fields, answers); !errs.Empty() {
		s.logger.Info("submission rejected", "form", form.ID, "errors", len(errs))
		return Result{}, &ValidationError{Fields: errs}
	}

	visible := visibility.Filter(s.evaluator, form.Fields, answers)
	fields := record.FromVisible(visible, answers)

	owner, err := s.users.GetUser(ctx, form.OwnerID)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, fmt.Errorf("%w: form %s owner %s", ErrOwnerNotFound, form.ID, form.OwnerID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("submission: load form owner: %w", err)
	}
	if s.writer == nil {
		return Result{}, errors.New("submission: record writer is not configured")
	}

	rec, err := s.writer.CreateRecord(ctx, owner, form.BaseID, form.TableID, fields)
	if err != nil {
		return Result{}, fmt.Errorf("submission: create airtable record: %w", err)
	}

	saved, err := s.submissions.CreateSubmission(ctx, model.Submission{
		FormID:   form.ID,
		RecordID: rec.ID,
		Payload:  answers,
	})
	if err != nil {
		// The record already exists in Airtable; surface the id so it can be
		// reconciled.
		s.logger.Error("submission stored in airtable but not locally", "form", form.ID, "record", rec.ID, "error", err)
		return Result{RecordID: rec.ID}, fmt.Errorf("submission: save submission: %w", err)
	}

	s.logger.Info("submission accepted", "form", form.ID, "record", rec.ID, "submission", saved.ID)
	return Result{RecordID: rec.ID, SubmissionID: saved.ID}, nil
}
