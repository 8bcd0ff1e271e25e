package proxy

import (
	"context"
	"fmt"

	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
)

// Text decorates an llm.TextBuilder with before/after pipeline hooks around
// Generate and a before hook around Stream.
type Text struct {
	target llm.TextBuilder
	ic     *interceptor
}

// NewText wraps a text builder.
func NewText(target llm.TextBuilder, runner *pipeline.Runner) *Text {
	return &Text{target: target, ic: newInterceptor(ModuleText, runner)}
}

// WithMetadata returns a derived proxy whose metadata is the shallow merge of
// the accumulated map and md. Handlers see the result in Context.Metadata.
func (p *Text) WithMetadata(md map[string]any) *Text {
	return &Text{target: p.target, ic: p.ic.withMetadata(md)}
}

// Metadata returns a copy of the accumulated metadata for inspection.
func (p *Text) Metadata() map[string]any { return p.ic.metadataCopy() }

// WithMiddleware attaches a handler for one event, scoped to this proxy
// instance chain only; the global registry is never touched.
func (p *Text) WithMiddleware(event string, h pipeline.Handler, priority int) *Text {
	return &Text{target: p.target, ic: p.ic.withMiddleware(event, h, priority)}
}

// wrap re-wraps the result of a chainable call. A nil result falls back to
// the current proxy so broken fluent implementations cannot detach the chain.
func (p *Text) wrap(next llm.TextBuilder) *Text {
	if next == nil {
		return p
	}
	return &Text{target: next, ic: p.ic}
}

// Using selects the model.
func (p *Text) Using(model string) *Text { return p.wrap(p.target.Using(model)) }

// WithSystemPrompt sets the system prompt.
func (p *Text) WithSystemPrompt(prompt string) *Text {
	return p.wrap(p.target.WithSystemPrompt(prompt))
}

// WithPrompt sets the user prompt.
func (p *Text) WithPrompt(prompt string) *Text { return p.wrap(p.target.WithPrompt(prompt)) }

// WithMessages appends conversational turns.
func (p *Text) WithMessages(msgs ...llm.Message) *Text {
	return p.wrap(p.target.WithMessages(msgs...))
}

// WithMaxTokens caps completion length.
func (p *Text) WithMaxTokens(n int) *Text { return p.wrap(p.target.WithMaxTokens(n)) }

// WithTemperature sets sampling temperature.
func (p *Text) WithTemperature(t float64) *Text { return p.wrap(p.target.WithTemperature(t)) }

// Request exposes the wrapped builder's accumulated request.
func (p *Text) Request() *llm.TextRequest { return p.target.Request() }

// Generate is terminal: it runs the text.before_text chain, invokes the real
// generation on the (possibly handler-replaced) builder, runs text.after_text
// and returns the (possibly handler-replaced) response.
func (p *Text) Generate(ctx context.Context) (*llm.TextResponse, error) {
	out, err := p.ic.around(ctx, textGenerateHooks, p.target, func(req any) (any, error) {
		target := p.target
		if b, ok := req.(llm.TextBuilder); ok {
			target = b
		}
		return target.Generate(ctx)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(*llm.TextResponse)
	if !ok {
		return nil, fmt.Errorf("proxy: after hook replaced text response with %T", out)
	}
	return resp, nil
}

// Stream is terminal but lazy: only the text.before_stream chain runs
// eagerly, then the provider's chunk channel is forwarded to the caller
// untouched. Completion-time hooks for streams are the consumer's concern.
func (p *Text) Stream(ctx context.Context) (<-chan llm.TextChunk, <-chan error) {
	req, err := p.ic.beforeOnly(ctx, textStreamHooks, p.target)
	if err != nil {
		out := make(chan llm.TextChunk)
		errCh := make(chan error, 1)
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}
	target := p.target
	if b, ok := req.(llm.TextBuilder); ok {
		target = b
	}
	return target.Stream(ctx)
}
