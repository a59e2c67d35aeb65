package store

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-airforms/pkg/model"
)

// DefaultCacheSize bounds CachedForms when no size is given.
const DefaultCacheSize = 1024

// CachedForms is a read-through LRU in front of a Forms repository. Public
// form views and submissions read the same form repeatedly; writes through
// this wrapper invalidate the cached entry before and after the write, and a
// read that overlapped a write is never cached.
type CachedForms struct {
	Forms
	cache *lru.Cache[string, model.Form]

	mu    sync.Mutex
	epoch uint64
}

// NewCachedForms wraps next with an LRU of the given size.
func NewCachedForms(next Forms, size int) (*CachedForms, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, model.Form](size)
	if err != nil {
		return nil, fmt.Errorf("store: form cache: %w", err)
	}
	return &CachedForms{Forms: next, cache: cache}, nil
}

func (c *CachedForms) GetForm(ctx context.Context, id string) (model.Form, error) {
	if form, ok := c.cache.Get(id); ok {
		return form.Clone(), nil
	}
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	form, err := c.Forms.GetForm(ctx, id)
	if err != nil {
		return model.Form{}, err
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.cache.Add(id, form.Clone())
	}
	c.mu.Unlock()
	return form, nil
}

func (c *CachedForms) UpdateForm(ctx context.Context, form model.Form) (model.Form, error) {
	c.invalidate(form.ID)
	defer c.invalidate(form.ID)
	return c.Forms.UpdateForm(ctx, form)
}

func (c *CachedForms) DeleteForm(ctx context.Context, ownerID, id string) error {
	c.invalidate(id)
	defer c.invalidate(id)
	return c.Forms.DeleteForm(ctx, ownerID, id)
}

func (c *CachedForms) invalidate(id string) {
	c.mu.Lock()
	c.epoch++
	c.cache.Remove(id)
	c.mu.Unlock()
}

// Len reports the number of cached forms.
func (c *CachedForms) Len() int {
	return c.cache.Len()
}
