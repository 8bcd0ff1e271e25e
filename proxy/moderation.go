package proxy

import (
	"context"
	"fmt"

	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
)

// Moderation decorates an llm.ModerationBuilder with before/after pipeline
// hooks around Check.
type Moderation struct {
	target llm.ModerationBuilder
	ic     *interceptor
}

// NewModeration wraps a moderation builder.
func NewModeration(target llm.ModerationBuilder, runner *pipeline.Runner) *Moderation {
	return &Moderation{target: target, ic: newInterceptor(ModuleModeration, runner)}
}

// WithMetadata returns a derived proxy with md shallow-merged into the
// accumulated metadata.
func (p *Moderation) WithMetadata(md map[string]any) *Moderation {
	return &Moderation{target: p.target, ic: p.ic.withMetadata(md)}
}

// Metadata returns a copy of the accumulated metadata.
func (p *Moderation) Metadata() map[string]any { return p.ic.metadataCopy() }

// WithMiddleware attaches a per-request handler for one event.
func (p *Moderation) WithMiddleware(event string, h pipeline.Handler, priority int) *Moderation {
	return &Moderation{target: p.target, ic: p.ic.withMiddleware(event, h, priority)}
}

func (p *Moderation) wrap(next llm.ModerationBuilder) *Moderation {
	if next == nil {
		return p
	}
	return &Moderation{target: next, ic: p.ic}
}

// Using selects the model.
func (p *Moderation) Using(model string) *Moderation { return p.wrap(p.target.Using(model)) }

// WithInput sets the content to check.
func (p *Moderation) WithInput(input string) *Moderation { return p.wrap(p.target.WithInput(input)) }

// Request exposes the wrapped builder's accumulated request.
func (p *Moderation) Request() *llm.ModerationRequest { return p.target.Request() }

// Check is terminal: moderation.before_moderation, the real call, then
// moderation.after_moderation.
func (p *Moderation) Check(ctx context.Context) (*llm.ModerationResponse, error) {
	out, err := p.ic.around(ctx, moderationHooks, p.target, func(req any) (any, error) {
		target := p.target
		if b, ok := req.(llm.ModerationBuilder); ok {
			target = b
		}
		return target.Check(ctx)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(*llm.ModerationResponse)
	if !ok {
		return nil, fmt.Errorf("proxy: after hook replaced moderation response with %T", out)
	}
	return resp, nil
}
