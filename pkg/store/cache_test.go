package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-airforms/pkg/model"
)

type countingForms struct {
	Forms
	gets atomic.Int32
}

func (c *countingForms) GetForm(ctx context.Context, id string) (model.Form, error) {
	c.gets.Add(1)
	return c.Forms.GetForm(ctx, id)
}

func TestCachedFormsReadThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingForms{Forms: NewMemory()}
	cached, err := NewCachedForms(backing, 8)
	require.NoError(t, err)

	form, err := cached.CreateForm(ctx, sampleForm("u1"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := cached.GetForm(ctx, form.ID)
		require.NoError(t, err)
		assert.Equal(t, "Applicants", got.Name)
	}
	assert.Equal(t, int32(1), backing.gets.Load())
	assert.Equal(t, 1, cached.Len())

	form.Name = "Renamed"
	_, err = cached.UpdateForm(ctx, form)
	require.NoError(t, err)

	got, err := cached.GetForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int32(2), backing.gets.Load())

	require.NoError(t, cached.DeleteForm(ctx, "u1", form.ID))
	_, err = cached.GetForm(ctx, form.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedFormsDoesNotCacheMisses(t *testing.T) {
	t.Parallel()

	cached, err := NewCachedForms(NewMemory(), 0)
	require.NoError(t, err)

	_, err = cached.GetForm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, cached.Len())
}

// gatedForms parks UpdateForm or GetForm until release is closed.
type gatedForms struct {
	Forms
	blockUpdate bool
	blockGet    atomic.Bool
	entered     chan struct{}
	release     chan struct{}
}

func newGatedForms(next Forms) *gatedForms {
	return &gatedForms{Forms: next, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedForms) UpdateForm(ctx context.Context, form model.Form) (model.Form, error) {
	if g.blockUpdate {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.Forms.UpdateForm(ctx, form)
}

func (g *gatedForms) GetForm(ctx context.Context, id string) (model.Form, error) {
	form, err := g.Forms.GetForm(ctx, id)
	if g.blockGet.CompareAndSwap(true, false) {
		g.entered <- struct{}{}
		<-g.release
	}
	return form, err
}

func waitEntered(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("gated call never started")
	}
}

func TestCachedFormsReadDuringUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()
	form, err := mem.CreateForm(ctx, sampleForm("u1"))
	require.NoError(t, err)

	gated := newGatedForms(mem)
	gated.blockUpdate = true
	cached, err := NewCachedForms(gated, 8)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		updated := form
		updated.Name = "New"
		_, err := cached.UpdateForm(ctx, updated)
		done <- err
	}()
	waitEntered(t, gated.entered)

	got, err := cached.GetForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Applicants", got.Name)

	close(gated.release)
	require.NoError(t, <-done)

	got, err = cached.GetForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
}

func TestCachedFormsSlowReadAcrossUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()
	form, err := mem.CreateForm(ctx, sampleForm("u1"))
	require.NoError(t, err)

	gated := newGatedForms(mem)
	gated.blockGet.Store(true)
	cached, err := NewCachedForms(gated, 8)
	require.NoError(t, err)

	read := make(chan model.Form, 1)
	go func() {
		got, _ := cached.GetForm(ctx, form.ID)
		read <- got
	}()
	waitEntered(t, gated.entered)

	updated := form
	updated.Name = "New"
	_, err = cached.UpdateForm(ctx, updated)
	require.NoError(t, err)

	close(gated.release)
	assert.Equal(t, "Applicants", (<-read).Name)
	assert.Equal(t, 0, cached.Len())

	got, err := cached.GetForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
}
