// Package store holds the dashboard's fetched state. Each container owns
// its own lock and is only ever updated by replacing its whole value with
// a fresh fetch result.
package store

import (
	"context"
	"sync"
	"time"
)

// FetchFunc loads a fresh value from the backend.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is a point-in-time copy of a container.
type State[T any] struct {
	Value     T
	Loaded    bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// Container holds one value together with its loading and error state.
type Container[T any] struct {
	name string

	mu        sync.RWMutex
	value     T
	loaded    bool
	loading   bool
	err       error
	updatedAt time.Time

	now func() time.Time
}

// NewContainer creates an empty container.
func NewContainer[T any](name string) *Container[T] {
	return &Container[T]{name: name, now: time.Now}
}

// Name identifies the container in logs.
func (c *Container[T]) Name() string {
	return c.name
}

// Get returns the current value and whether it was ever loaded.
func (c *Container[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

// State returns a copy of the full container state.
func (c *Container[T]) State() State[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State[T]{
		Value:     c.value,
		Loaded:    c.loaded,
		Loading:   c.loading,
		Err:       c.err,
		UpdatedAt: c.updatedAt,
	}
}

// Refresh calls fetch and replaces the value on success. On failure the
// previous value is kept and the error is recorded.
func (c *Container[T]) Refresh(ctx context.Context, fetch FetchFunc[T]) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	v, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.err = err
	if err != nil {
		return err
	}
	c.value = v
	c.loaded = true
	c.updatedAt = c.now()
	return nil
}

// LoadOnce refreshes only if the container has never been loaded.
func (c *Container[T]) LoadOnce(ctx context.Context, fetch FetchFunc[T]) error {
	if _, loaded := c.Get(); loaded {
		return nil
	}
	return c.Refresh(ctx, fetch)
}

// Replace sets the value directly, as a successful fetch would.
func (c *Container[T]) Replace(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.loaded = true
	c.err = nil
	c.updatedAt = c.now()
}

// Reset drops the value, e.g. on logout.
func (c *Container[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.loaded = false
	c.loading = false
	c.err = nil
	c.updatedAt = time.Time{}
}
