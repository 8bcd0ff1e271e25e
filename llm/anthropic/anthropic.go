// Package anthropic provides an llm text builder backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/atlas/llm"
)

// Options configures the Anthropic client defaults (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int
	APIKey      string
}

// Client wraps the Anthropic SDK behind the generic llm.Client interface.
// Only the text module is supported; the others fail terminally with
// llm.ErrUnsupported.
type Client struct {
	client *anthropic.Client
	opts   Options
}

// NewClient creates a new Anthropic client using the official SDK.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Client{client: &client, opts: opts}
}

// NewClientFromSDK creates a Client from an existing SDK client.
func NewClientFromSDK(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// Text implements llm.Client.
func (c *Client) Text() llm.TextBuilder {
	return &textBuilder{
		client: c.client,
		req: &llm.TextRequest{
			Model:       string(c.opts.Model),
			Temperature: c.opts.Temperature,
			MaxTokens:   c.opts.MaxTokens,
		},
	}
}

// Embeddings implements llm.Client.
func (c *Client) Embeddings() llm.EmbeddingsBuilder {
	return llm.UnsupportedEmbeddingsBuilder{Provider: "anthropic"}
}

// Image implements llm.Client.
func (c *Client) Image() llm.ImageBuilder {
	return llm.UnsupportedImageBuilder{Provider: "anthropic"}
}

// Moderation implements llm.Client.
func (c *Client) Moderation() llm.ModerationBuilder {
	return llm.UnsupportedModerationBuilder{Provider: "anthropic"}
}

type textBuilder struct {
	client *anthropic.Client
	req    *llm.TextRequest
}

func (b *textBuilder) derive(mutate func(r *llm.TextRequest)) *textBuilder {
	req := b.req.Clone()
	mutate(req)
	return &textBuilder{client: b.client, req: req}
}

func (b *textBuilder) Using(model string) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.Model = model })
}

func (b *textBuilder) WithSystemPrompt(prompt string) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.SystemPrompt = prompt })
}

func (b *textBuilder) WithPrompt(prompt string) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.Prompt = prompt })
}

func (b *textBuilder) WithMessages(msgs ...llm.Message) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.Messages = append(r.Messages, msgs...) })
}

func (b *textBuilder) WithMaxTokens(n int) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.MaxTokens = n })
}

func (b *textBuilder) WithTemperature(t float64) llm.TextBuilder {
	return b.derive(func(r *llm.TextRequest) { r.Temperature = t })
}

func (b *textBuilder) Request() *llm.TextRequest { return b.req }

// buildMessages converts normalized turns into Anthropic message params.
// System content is handled separately via the System field.
func (b *textBuilder) buildMessages() []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, m := range b.req.Messages {
		if m.Role == "system" || m.Content == "" {
			continue
		}
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if b.req.Prompt != "" {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(b.req.Prompt)))
	}
	return messages
}

func (b *textBuilder) Generate(ctx context.Context) (*llm.TextResponse, error) {
	maxTokens := b.req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.req.Model),
		Messages:  b.buildMessages(),
		MaxTokens: int64(maxTokens),
	}
	if b.req.Temperature > 0 {
		params.Temperature = anthropic.Float(b.req.Temperature)
	}
	if b.req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: b.req.SystemPrompt}}
	}
	for _, m := range b.req.Messages {
		if m.Role == "system" && m.Content != "" {
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return &llm.TextResponse{
		ID:           resp.ID,
		Text:         text,
		FinishReason: finishReason,
		Usage: &llm.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Stream is not implemented for the Anthropic provider yet.
// TODO: adapt anthropic.MessageStreamEvent handling (partial text
// accumulation, stop reason mapping) once the streaming contract settles.
func (b *textBuilder) Stream(ctx context.Context) (<-chan llm.TextChunk, <-chan error) {
	out := make(chan llm.TextChunk)
	errCh := make(chan error, 1)
	errCh <- fmt.Errorf("streaming not yet implemented for the anthropic provider")
	close(out)
	close(errCh)
	return out, errCh
}
