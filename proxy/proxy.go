package proxy

import (
	"context"

	"github.com/hupe1980/atlas/pipeline"
)

// Module names double as the Pipeline field of contexts built by the
// decorators.
const (
	ModuleText       = "text"
	ModuleEmbeddings = "embeddings"
	ModuleImage      = "image"
	ModuleModeration = "moderation"
)

// Event names follow the {subject}.{phase}_{action} convention. The pipeline
// core treats them as opaque strings; these constants are the contract
// between the decorators and handler registrations.
const (
	EventBeforeText   = "text.before_text"
	EventAfterText    = "text.after_text"
	EventBeforeStream = "text.before_stream"

	EventBeforeEmbeddings = "embeddings.before_embeddings"
	EventAfterEmbeddings  = "embeddings.after_embeddings"

	EventBeforeImage = "image.before_image"
	EventAfterImage  = "image.after_image"

	EventBeforeModeration = "moderation.before_moderation"
	EventAfterModeration  = "moderation.after_moderation"
)

// hooks pairs the before/after events of one terminal method. A terminal
// without an after entry (streaming) runs only its before hook eagerly.
type hooks struct {
	before string
	after  string
}

// Terminal-method hook tables, one per module.
var (
	textGenerateHooks = hooks{before: EventBeforeText, after: EventAfterText}
	textStreamHooks   = hooks{before: EventBeforeStream}
	embeddingsHooks   = hooks{before: EventBeforeEmbeddings, after: EventAfterEmbeddings}
	imageHooks        = hooks{before: EventBeforeImage, after: EventAfterImage}
	moderationHooks   = hooks{before: EventBeforeModeration, after: EventAfterModeration}
)

// Events lists every event name the decorators emit, for bulk definition at
// startup.
func Events() []string {
	return []string{
		EventBeforeText, EventAfterText, EventBeforeStream,
		EventBeforeEmbeddings, EventAfterEmbeddings,
		EventBeforeImage, EventAfterImage,
		EventBeforeModeration, EventAfterModeration,
	}
}

// interceptor carries the per-proxy-chain state shared by all decorators:
// the module identity, accumulated metadata and runtime (per-request)
// middleware. Decorator clones share nothing mutable with their parents.
type interceptor struct {
	module   string
	runner   *pipeline.Runner
	metadata map[string]any
	runtime  map[string][]pipeline.Registration
}

func newInterceptor(module string, runner *pipeline.Runner) *interceptor {
	return &interceptor{
		module:   module,
		runner:   runner,
		metadata: map[string]any{},
		runtime:  map[string][]pipeline.Registration{},
	}
}

func (c *interceptor) clone() *interceptor {
	nc := &interceptor{
		module:   c.module,
		runner:   c.runner,
		metadata: make(map[string]any, len(c.metadata)),
		runtime:  make(map[string][]pipeline.Registration, len(c.runtime)),
	}
	for k, v := range c.metadata {
		nc.metadata[k] = v
	}
	for event, regs := range c.runtime {
		nc.runtime[event] = append([]pipeline.Registration(nil), regs...)
	}
	return nc
}

func (c *interceptor) withMetadata(md map[string]any) *interceptor {
	nc := c.clone()
	for k, v := range md {
		nc.metadata[k] = v
	}
	return nc
}

func (c *interceptor) withMiddleware(event string, h pipeline.Handler, priority int) *interceptor {
	nc := c.clone()
	nc.runtime[event] = append(nc.runtime[event], pipeline.Registration{Handler: h, Priority: priority})
	return nc
}

func (c *interceptor) metadataCopy() map[string]any {
	out := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// run executes one event, merging in any runtime middleware attached for it.
func (c *interceptor) run(ctx context.Context, event string, pc *pipeline.Context) (*pipeline.Context, error) {
	return c.runner.RunIfActive(ctx, event, pc, c.runtime[event]...)
}

// around implements the terminal-call contract: before hook, real operation
// on the (possibly replaced) request, after hook, return the (possibly
// replaced) response.
func (c *interceptor) around(ctx context.Context, h hooks, request any, invoke func(req any) (any, error)) (any, error) {
	pc := pipeline.NewContext(c.module)
	pc.Metadata = c.metadataCopy()
	pc.Request = request

	pc, err := c.run(ctx, h.before, pc)
	if err != nil {
		return nil, err
	}

	resp, err := invoke(pc.Request)
	if err != nil {
		return nil, err
	}
	pc.Response = resp

	pc, err = c.run(ctx, h.after, pc)
	if err != nil {
		return nil, err
	}
	return pc.Response, nil
}

// beforeOnly runs just the before hook and returns the (possibly replaced)
// request. Streaming terminals use it since there is no synchronous result
// to thread through an after chain.
func (c *interceptor) beforeOnly(ctx context.Context, h hooks, request any) (any, error) {
	pc := pipeline.NewContext(c.module)
	pc.Metadata = c.metadataCopy()
	pc.Request = request

	pc, err := c.run(ctx, h.before, pc)
	if err != nil {
		return nil, err
	}
	return pc.Request, nil
}
