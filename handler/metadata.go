package handler

import (
	"context"

	"github.com/hupe1980/atlas/pipeline"
)

// InjectMetadata merges a static key/value set into every context passing
// through it, before continuing the chain. Later handlers in the same
// context's lifetime (including after-chain handlers) observe the merged
// values.
type InjectMetadata struct {
	values map[string]any
}

// NewInjectMetadata creates a metadata injection handler.
func NewInjectMetadata(values map[string]any) *InjectMetadata {
	return &InjectMetadata{values: values}
}

// Handle implements pipeline.Handler.
func (h *InjectMetadata) Handle(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
	if pc.Metadata == nil {
		pc.Metadata = map[string]any{}
	}
	for k, v := range h.values {
		pc.Metadata[k] = v
	}
	return next(ctx, pc)
}
