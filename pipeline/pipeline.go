package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// Context is the mutable payload threaded through a handler chain for one
// logical operation. It is constructed fresh per terminal call and discarded
// once the chain completes.
//
// Handlers receive the Context produced by the previous handler (or the
// initial Context for the first handler) and must return a Context of the
// same shape: they may replace Request, Response and Metadata values but
// should not nil out fields downstream handlers rely on.
type Context struct {
	// ID uniquely identifies this logical operation, for correlation in
	// logs and traces.
	ID string

	// Pipeline names the module whose chain is executing, e.g. "text".
	Pipeline string

	// Metadata carries arbitrary caller- and handler-supplied values.
	// Mutations made by an earlier handler are visible to later handlers,
	// including handlers of a subsequent after-chain run on the same Context.
	Metadata map[string]any

	// Request is the operation input. Before-chains typically read and
	// optionally replace it.
	Request any

	// Response is the operation output. After-chains typically read and
	// optionally replace it.
	Response any
}

// NewContext creates a Context for the named pipeline with a fresh ID and an
// empty metadata map.
func NewContext(pipeline string) *Context {
	return &Context{
		ID:       uuid.NewString(),
		Pipeline: pipeline,
		Metadata: map[string]any{},
	}
}

// Next is the continuation a handler invokes to pass control to the rest of
// the chain. Not calling it short-circuits all downstream handlers.
type Next func(ctx context.Context, pc *Context) (*Context, error)

// Handler is the unit of behavior registered against a pipeline event.
//
// Implementations receive the current Context and the continuation for the
// remainder of the chain. The returned Context becomes the chain result (for
// the outermost handler) or the input of the upstream handler's continuation.
type Handler interface {
	Handle(ctx context.Context, pc *Context, next Next) (*Context, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, pc *Context, next Next) (*Context, error)

// Handle calls the wrapped function.
func (f HandlerFunc) Handle(ctx context.Context, pc *Context, next Next) (*Context, error) {
	return f(ctx, pc, next)
}

// Resolver produces handler instances from string references. It is supplied
// by the host application (typically backed by its dependency-injection
// facility) and consulted lazily the first time a ref-registered handler is
// needed.
type Resolver interface {
	Resolve(ref string) (Handler, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ref string) (Handler, error)

// Resolve calls the wrapped function.
func (f ResolverFunc) Resolve(ref string) (Handler, error) { return f(ref) }

// Registration pairs a handler (or an unresolved reference to one) with a
// priority. Runtime middleware is passed to the Runner as extra Registrations
// scoped to a single operation; the Registry stores one per registered
// handler.
type Registration struct {
	// Handler is the ready instance. Exactly one of Handler and Ref is set.
	Handler Handler

	// Ref is a reference resolved through the registry's Resolver on first
	// use, then cached.
	Ref string

	// Priority orders execution: higher runs first. Equal priorities keep
	// registration order.
	Priority int
}
