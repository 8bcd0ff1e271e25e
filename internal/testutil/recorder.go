// Package testutil contains helper handlers used across tests to reduce
// boilerplate when asserting chain execution order and context mutation.
// These helpers are intentionally minimal and avoid adding third‑party
// dependencies. They are not intended for production usage.
package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/atlas/pipeline"
)

// Recorder collects the names of handlers as they execute, so tests can
// assert chain ordering. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Calls returns a copy of the recorded handler names in execution order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Handler returns a pass-through handler that records name before
// continuing the chain.
func (r *Recorder) Handler(name string) pipeline.HandlerFunc {
	return func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		r.record(name)
		return next(ctx, pc)
	}
}

// ShortCircuit returns a handler that records name and returns the context
// without calling next.
func (r *Recorder) ShortCircuit(name string) pipeline.HandlerFunc {
	return func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		r.record(name)
		return pc, nil
	}
}

// Failing returns a handler that records name and fails with err.
func (r *Recorder) Failing(name string, err error) pipeline.HandlerFunc {
	return func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		r.record(name)
		return nil, err
	}
}

// Mutating returns a pass-through handler that records name and applies
// mutate to the context before continuing.
func (r *Recorder) Mutating(name string, mutate func(pc *pipeline.Context)) pipeline.HandlerFunc {
	return func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		r.record(name)
		mutate(pc)
		return next(ctx, pc)
	}
}

// Counter is a handler that counts its executions. Safe for concurrent use.
type Counter struct {
	mu sync.Mutex
	n  int
}

// NewCounter creates a Counter at zero.
func NewCounter() *Counter { return &Counter{} }

// Count returns the number of executions so far.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Handle implements pipeline.Handler.
func (c *Counter) Handle(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return next(ctx, pc)
}
