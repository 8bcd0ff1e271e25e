package proxy

import (
	"context"
	"fmt"

	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
)

// Image decorates an llm.ImageBuilder with before/after pipeline hooks
// around Generate.
type Image struct {
	target llm.ImageBuilder
	ic     *interceptor
}

// NewImage wraps an image builder.
func NewImage(target llm.ImageBuilder, runner *pipeline.Runner) *Image {
	return &Image{target: target, ic: newInterceptor(ModuleImage, runner)}
}

// WithMetadata returns a derived proxy with md shallow-merged into the
// accumulated metadata.
func (p *Image) WithMetadata(md map[string]any) *Image {
	return &Image{target: p.target, ic: p.ic.withMetadata(md)}
}

// Metadata returns a copy of the accumulated metadata.
func (p *Image) Metadata() map[string]any { return p.ic.metadataCopy() }

// WithMiddleware attaches a per-request handler for one event.
func (p *Image) WithMiddleware(event string, h pipeline.Handler, priority int) *Image {
	return &Image{target: p.target, ic: p.ic.withMiddleware(event, h, priority)}
}

func (p *Image) wrap(next llm.ImageBuilder) *Image {
	if next == nil {
		return p
	}
	return &Image{target: next, ic: p.ic}
}

// Using selects the model.
func (p *Image) Using(model string) *Image { return p.wrap(p.target.Using(model)) }

// WithPrompt sets the image prompt.
func (p *Image) WithPrompt(prompt string) *Image { return p.wrap(p.target.WithPrompt(prompt)) }

// WithSize sets the output size.
func (p *Image) WithSize(size string) *Image { return p.wrap(p.target.WithSize(size)) }

// Request exposes the wrapped builder's accumulated request.
func (p *Image) Request() *llm.ImageRequest { return p.target.Request() }

// Generate is terminal: image.before_image, the real call, then
// image.after_image.
func (p *Image) Generate(ctx context.Context) (*llm.ImageResponse, error) {
	out, err := p.ic.around(ctx, imageHooks, p.target, func(req any) (any, error) {
		target := p.target
		if b, ok := req.(llm.ImageBuilder); ok {
			target = b
		}
		return target.Generate(ctx)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(*llm.ImageResponse)
	if !ok {
		return nil, fmt.Errorf("proxy: after hook replaced image response with %T", out)
	}
	return resp, nil
}
