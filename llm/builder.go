package llm

import "context"

// TextBuilder is the fluent request builder for text generation. Chainable
// methods return a derived builder; Generate and Stream are terminal and
// perform the provider call.
type TextBuilder interface {
	// Using selects the model.
	Using(model string) TextBuilder

	// WithSystemPrompt sets the system prompt.
	WithSystemPrompt(prompt string) TextBuilder

	// WithPrompt sets a single user prompt. Mutually additive with
	// WithMessages: the prompt is sent as the last user turn.
	WithPrompt(prompt string) TextBuilder

	// WithMessages appends conversational turns.
	WithMessages(msgs ...Message) TextBuilder

	// WithMaxTokens caps completion length.
	WithMaxTokens(n int) TextBuilder

	// WithTemperature sets sampling temperature.
	WithTemperature(t float64) TextBuilder

	// Request exposes the accumulated request for inspection by pipeline
	// handlers.
	Request() *TextRequest

	// Generate performs the text generation call.
	Generate(ctx context.Context) (*TextResponse, error)

	// Stream performs the call in streaming mode. The chunk channel is
	// closed when generation completes; a terminal error, if any, is
	// delivered on the error channel.
	Stream(ctx context.Context) (<-chan TextChunk, <-chan error)
}

// EmbeddingsBuilder is the fluent request builder for embeddings.
type EmbeddingsBuilder interface {
	Using(model string) EmbeddingsBuilder
	FromInput(input string) EmbeddingsBuilder
	FromInputs(inputs ...string) EmbeddingsBuilder
	Request() *EmbeddingsRequest
	Generate(ctx context.Context) (*EmbeddingsResponse, error)
}

// ImageBuilder is the fluent request builder for image generation.
type ImageBuilder interface {
	Using(model string) ImageBuilder
	WithPrompt(prompt string) ImageBuilder
	WithSize(size string) ImageBuilder
	Request() *ImageRequest
	Generate(ctx context.Context) (*ImageResponse, error)
}

// ModerationBuilder is the fluent request builder for content moderation.
type ModerationBuilder interface {
	Using(model string) ModerationBuilder
	WithInput(input string) ModerationBuilder
	Request() *ModerationRequest
	Check(ctx context.Context) (*ModerationResponse, error)
}

// Client groups one provider's builders by module. Each call returns a fresh
// builder with the provider's defaults applied.
type Client interface {
	Text() TextBuilder
	Embeddings() EmbeddingsBuilder
	Image() ImageBuilder
	Moderation() ModerationBuilder
}
