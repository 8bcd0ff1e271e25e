package pipeline

import (
	"context"

	"github.com/hupe1980/atlas/logging"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Logger receives development-mode diagnostics (short-circuit notices).
	// Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner executes pipeline handler chains against a Context, implementing
// chain-of-responsibility with an explicit next continuation.
//
// Call sites should use RunIfActive; Run bypasses the activation gate and is
// reserved for tests and for callers that manage activation themselves.
type Runner struct {
	registry *Registry
	logger   logging.Logger
}

// NewRunner creates a Runner bound to a registry.
func NewRunner(registry *Registry, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{registry: registry, logger: opts.Logger}
}

// Run executes the named pipeline's chain against pc and returns the final
// Context. Handler i is invoked with (pc, next) where next continues with
// handler i+1; the innermost continuation returns the Context unchanged.
//
// A handler that returns without calling next short-circuits the remainder
// of the chain; the chain result is exactly what that handler returned.
// Errors from handlers (including handler resolution failures) propagate
// unchanged through the partially-unwound chain.
//
// Extra registrations are merged with the globally registered handlers for
// this run only; they are never written to the registry.
func (r *Runner) Run(ctx context.Context, name string, pc *Context, extra ...Registration) (*Context, error) {
	handlers, err := r.registry.chain(name, extra)
	if err != nil {
		return nil, err
	}
	if len(handlers) == 0 {
		return pc, nil
	}

	reachedEnd := false
	next := Next(func(_ context.Context, pc *Context) (*Context, error) {
		reachedEnd = true
		return pc, nil
	})
	for i := len(handlers) - 1; i >= 0; i-- {
		next = r.link(handlers[i], next)
	}

	out, err := next(ctx, pc)
	if err == nil && !reachedEnd {
		// Intentional escape hatch, but worth a trace when debugging a
		// handler that forgot to call next.
		r.logger.Debug("pipeline chain short-circuited before terminal continuation", "pipeline", name, "context_id", pc.ID)
	}
	return out, err
}

// RunIfActive executes the named pipeline if it is defined and active, and
// otherwise returns pc unchanged without running any handler. Undefined
// pipeline names are not an error here: consumers may emit events that the
// host application never wired up.
func (r *Runner) RunIfActive(ctx context.Context, name string, pc *Context, extra ...Registration) (*Context, error) {
	if !r.registry.Active(name) {
		return pc, nil
	}
	return r.Run(ctx, name, pc, extra...)
}

// link wraps a handler and its downstream continuation into a continuation.
func (r *Runner) link(h Handler, next Next) Next {
	return func(ctx context.Context, pc *Context) (*Context, error) {
		return h.Handle(ctx, pc, next)
	}
}
