package llm

import (
	"context"
	"fmt"
)

// UnsupportedEmbeddingsBuilder satisfies EmbeddingsBuilder for providers
// without an embeddings API. Chainable calls are no-ops; Generate fails with
// ErrUnsupported.
type UnsupportedEmbeddingsBuilder struct{ Provider string }

// Using implements EmbeddingsBuilder.
func (b UnsupportedEmbeddingsBuilder) Using(string) EmbeddingsBuilder { return b }

// FromInput implements EmbeddingsBuilder.
func (b UnsupportedEmbeddingsBuilder) FromInput(string) EmbeddingsBuilder { return b }

// FromInputs implements EmbeddingsBuilder.
func (b UnsupportedEmbeddingsBuilder) FromInputs(...string) EmbeddingsBuilder { return b }

// Request implements EmbeddingsBuilder.
func (b UnsupportedEmbeddingsBuilder) Request() *EmbeddingsRequest { return &EmbeddingsRequest{} }

// Generate implements EmbeddingsBuilder.
func (b UnsupportedEmbeddingsBuilder) Generate(context.Context) (*EmbeddingsResponse, error) {
	return nil, fmt.Errorf("%s: embeddings: %w", b.Provider, ErrUnsupported)
}

// UnsupportedImageBuilder satisfies ImageBuilder for providers without an
// image generation API.
type UnsupportedImageBuilder struct{ Provider string }

// Using implements ImageBuilder.
func (b UnsupportedImageBuilder) Using(string) ImageBuilder { return b }

// WithPrompt implements ImageBuilder.
func (b UnsupportedImageBuilder) WithPrompt(string) ImageBuilder { return b }

// WithSize implements ImageBuilder.
func (b UnsupportedImageBuilder) WithSize(string) ImageBuilder { return b }

// Request implements ImageBuilder.
func (b UnsupportedImageBuilder) Request() *ImageRequest { return &ImageRequest{} }

// Generate implements ImageBuilder.
func (b UnsupportedImageBuilder) Generate(context.Context) (*ImageResponse, error) {
	return nil, fmt.Errorf("%s: image generation: %w", b.Provider, ErrUnsupported)
}

// UnsupportedModerationBuilder satisfies ModerationBuilder for providers
// without a moderation API.
type UnsupportedModerationBuilder struct{ Provider string }

// Using implements ModerationBuilder.
func (b UnsupportedModerationBuilder) Using(string) ModerationBuilder { return b }

// WithInput implements ModerationBuilder.
func (b UnsupportedModerationBuilder) WithInput(string) ModerationBuilder { return b }

// Request implements ModerationBuilder.
func (b UnsupportedModerationBuilder) Request() *ModerationRequest { return &ModerationRequest{} }

// Check implements ModerationBuilder.
func (b UnsupportedModerationBuilder) Check(context.Context) (*ModerationResponse, error) {
	return nil, fmt.Errorf("%s: moderation: %w", b.Provider, ErrUnsupported)
}
