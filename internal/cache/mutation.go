package cache

import (
	"context"
	"sync"
)

// MutateOptions lifecycle callbacks of a mutation
type MutateOptions struct {
	OnSuccess func(value any)
	OnError   func(err error)
	OnSettled func()
}

// Mutation runs write operations and exposes their pending state.
// Mutations own no cache entry; on success they typically invalidate
// key prefixes instead.
type Mutation struct {
	mu      sync.Mutex
	pending bool
}

// NewMutation creates an idle mutation
func NewMutation() *Mutation {
	return &Mutation{}
}

// IsPending reports whether a run is in progress
func (m *Mutation) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Run executes fn, flipping the pending flag around it and dispatching
// the callbacks: OnSuccess or OnError first, then OnSettled always.
// The fn result and error are also returned to the caller.
func (m *Mutation) Run(ctx context.Context, fn func(ctx context.Context) (any, error), opts MutateOptions) (any, error) {
	m.mu.Lock()
	m.pending = true
	m.mu.Unlock()

	value, err := fn(ctx)

	m.mu.Lock()
	m.pending = false
	m.mu.Unlock()

	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
	} else if opts.OnSuccess != nil {
		opts.OnSuccess(value)
	}

	if opts.OnSettled != nil {
		opts.OnSettled()
	}

	return value, err
}
