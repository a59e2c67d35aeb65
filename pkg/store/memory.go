package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-airforms/pkg/model"
)

// MemoryOption customises a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// Memory is a mutex guarded in-process Store.
type Memory struct {
	mu          sync.RWMutex
	forms       map[string]model.Form
	submissions map[string][]model.Submission
	users       map[string]model.User
	now         func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory(options ...MemoryOption) *Memory {
	m := &Memory{
		forms:       make(map[string]model.Form),
		submissions: make(map[string][]model.Submission),
		users:       make(map[string]model.User),
		now:         time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Memory) CreateForm(_ context.Context, form model.Form) (model.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	now := m.now().UTC()
	form.CreatedAt = now
	form.UpdatedAt = now
	m.forms[form.ID] = form.Clone()
	return form, nil
}

func (m *Memory) GetForm(_ context.Context, id string) (model.Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	form, ok := m.forms[id]
	if !ok {
		return model.Form{}, ErrNotFound
	}
	return form.Clone(), nil
}

func (m *Memory) ListForms(_ context.Context, ownerID string) ([]model.Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Form, 0)
	for _, form := range m.forms {
		if form.OwnerID == ownerID {
			out = append(out, form.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateForm(_ context.Context, form model.Form) (model.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.forms[form.ID]
	if !ok || existing.OwnerID != form.OwnerID {
		return model.Form{}, ErrNotFound
	}
	form.CreatedAt = existing.CreatedAt
	form.UpdatedAt = m.now().UTC()
	m.forms[form.ID] = form.Clone()
	return form, nil
}

func (m *Memory) DeleteForm(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.forms[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.forms, id)
	delete(m.submissions, id)
	return nil
}

func (m *Memory) CreateSubmission(_ context.Context, submission model.Submission) (model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.forms[submission.FormID]; !ok {
		return model.Submission{}, ErrNotFound
	}
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	submission.CreatedAt = m.now().UTC()
	submission.Payload = submission.Payload.Clone()
	m.submissions[submission.FormID] = append(m.submissions[submission.FormID], submission)
	return submission, nil
}

func (m *Memory) ListSubmissions(_ context.Context, formID string) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.submissions[formID]
	out := make([]model.Submission, len(items))
	copy(out, items)
	return out, nil
}

func (m *Memory) UpsertUser(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	for id, existing := range m.users {
		if existing.AirtableUserID != user.AirtableUserID {
			continue
		}
		user.ID = id
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = now
		m.users[id] = user
		return user, nil
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) GetUser(_ context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
