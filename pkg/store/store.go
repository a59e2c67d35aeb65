// Package store persists forms, submissions and connected users. Memory is
// used for tests and local runs, Postgres for deployments, and CachedForms
// fronts either one on the public read path.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-airforms/pkg/model"
)

// ErrNotFound is returned when a document does not exist or is not owned by
// the caller.
var ErrNotFound = errors.New("store: not found")

// Forms persists form documents.
type Forms interface {
	CreateForm(ctx context.Context, form model.Form) (model.Form, error)
	GetForm(ctx context.Context, id string) (model.Form, error)
	// ListForms returns the owner's forms, newest first.
	ListForms(ctx context.Context, ownerID string) ([]model.Form, error)
	// UpdateForm replaces a form owned by form.OwnerID.
	UpdateForm(ctx context.Context, form model.Form) (model.Form, error)
	DeleteForm(ctx context.Context, ownerID, id string) error
}

// Submissions records accepted responses.
type Submissions interface {
	CreateSubmission(ctx context.Context, submission model.Submission) (model.Submission, error)
	ListSubmissions(ctx context.Context, formID string) ([]model.Submission, error)
}

// Users persists accounts connected through Airtable OAuth.
type Users interface {
	// UpsertUser inserts or updates the user keyed by AirtableUserID.
	UpsertUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
}

// Store bundles every repository.
type Store interface {
	Forms
	Submissions
	Users
	Close() error
}
