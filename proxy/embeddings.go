package proxy

import (
	"context"
	"fmt"

	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
)

// Embeddings decorates an llm.EmbeddingsBuilder with before/after pipeline
// hooks around Generate.
type Embeddings struct {
	target llm.EmbeddingsBuilder
	ic     *interceptor
}

// NewEmbeddings wraps an embeddings builder.
func NewEmbeddings(target llm.EmbeddingsBuilder, runner *pipeline.Runner) *Embeddings {
	return &Embeddings{target: target, ic: newInterceptor(ModuleEmbeddings, runner)}
}

// WithMetadata returns a derived proxy with md shallow-merged into the
// accumulated metadata.
func (p *Embeddings) WithMetadata(md map[string]any) *Embeddings {
	return &Embeddings{target: p.target, ic: p.ic.withMetadata(md)}
}

// Metadata returns a copy of the accumulated metadata.
func (p *Embeddings) Metadata() map[string]any { return p.ic.metadataCopy() }

// WithMiddleware attaches a per-request handler for one event.
func (p *Embeddings) WithMiddleware(event string, h pipeline.Handler, priority int) *Embeddings {
	return &Embeddings{target: p.target, ic: p.ic.withMiddleware(event, h, priority)}
}

func (p *Embeddings) wrap(next llm.EmbeddingsBuilder) *Embeddings {
	if next == nil {
		return p
	}
	return &Embeddings{target: next, ic: p.ic}
}

// Using selects the model.
func (p *Embeddings) Using(model string) *Embeddings { return p.wrap(p.target.Using(model)) }

// FromInput appends one input.
func (p *Embeddings) FromInput(input string) *Embeddings { return p.wrap(p.target.FromInput(input)) }

// FromInputs appends inputs.
func (p *Embeddings) FromInputs(inputs ...string) *Embeddings {
	return p.wrap(p.target.FromInputs(inputs...))
}

// Request exposes the wrapped builder's accumulated request.
func (p *Embeddings) Request() *llm.EmbeddingsRequest { return p.target.Request() }

// Generate is terminal: embeddings.before_embeddings, the real call, then
// embeddings.after_embeddings.
func (p *Embeddings) Generate(ctx context.Context) (*llm.EmbeddingsResponse, error) {
	out, err := p.ic.around(ctx, embeddingsHooks, p.target, func(req any) (any, error) {
		target := p.target
		if b, ok := req.(llm.EmbeddingsBuilder); ok {
			target = b
		}
		return target.Generate(ctx)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(*llm.EmbeddingsResponse)
	if !ok {
		return nil, fmt.Errorf("proxy: after hook replaced embeddings response with %T", out)
	}
	return resp, nil
}
