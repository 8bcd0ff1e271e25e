// Package openai provides llm builders backed by the OpenAI API (Chat
// Completions including streaming, and Embeddings). It adapts the normalized
// llm request structures into the SDK's parameter format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/atlas/llm"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI client defaults applied to fresh builders.
// Fields mirror a subset of the API parameters intentionally kept minimal;
// extend via functional options without breaking callers.
type Options struct {
	Model           string
	EmbeddingsModel string
	Temperature     float64
	MaxTokens       int
}

// Client wraps the OpenAI SDK behind the generic llm.Client interface.
type Client struct {
	client *openai.Client
	opts   Options
}

// NewClient creates a new OpenAI client using the official SDK defaults
// (API key from the environment).
func NewClient(optFns ...func(o *Options)) *Client {
	client := openai.NewClient()
	return NewClientFromSDK(&client, optFns...)
}

// NewClientFromSDK creates a Client from an existing SDK client.
func NewClientFromSDK(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:           openai.ChatModelGPT4oMini,
		EmbeddingsModel: "text-embedding-3-small",
		Temperature:     0.7,
		MaxTokens:       4096,
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
			Model:       c.opts.Model,
			Temperature: c.opts.Temperature,
			MaxTokens:   c.opts.MaxTokens,
		},
	}
}

// Embeddings implements llm.Client.
func (c *Client) Embeddings() llm.EmbeddingsBuilder {
	return &embeddingsBuilder{
		client: c.client,
		req:    &llm.EmbeddingsRequest{Model: c.opts.EmbeddingsModel},
	}
}

// Image implements llm.Client. Image generation is not wired up yet; the
// builder fails terminally with llm.ErrUnsupported.
func (c *Client) Image() llm.ImageBuilder {
	return llm.UnsupportedImageBuilder{Provider: "openai"}
}

// Moderation implements llm.Client. Not wired up yet, see Image.
func (c *Client) Moderation() llm.ModerationBuilder {
	return llm.UnsupportedModerationBuilder{Provider: "openai"}
}

type textBuilder struct {
	client *openai.Client
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

// buildMessages converts the normalized request into OpenAI chat messages.
// The system prompt leads, explicit turns follow, and a plain prompt is sent
// as the final user turn.
func (b *textBuilder) buildMessages() []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if b.req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(b.req.SystemPrompt))
	}
	for _, m := range b.req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	if b.req.Prompt != "" {
		messages = append(messages, openai.UserMessage(b.req.Prompt))
	}
	return messages
}

func (b *textBuilder) buildParams() openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: b.buildMessages(),
		Model:    b.req.Model,
	}
	if b.req.Temperature > 0 {
		params.Temperature = openai.Float(b.req.Temperature)
	}
	if b.req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(b.req.MaxTokens))
	}
	return params
}

func (b *textBuilder) Generate(ctx context.Context) (*llm.TextResponse, error) {
	resp, err := b.client.Chat.Completions.New(ctx, b.buildParams())
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: empty choices")
	}
	choice := resp.Choices[0]
	return &llm.TextResponse{
		ID:           resp.ID,
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: &llm.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (b *textBuilder) Stream(ctx context.Context) (<-chan llm.TextChunk, <-chan error) {
	out := make(chan llm.TextChunk, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		stream := b.client.Chat.Completions.NewStreaming(ctx, b.buildParams())
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content != "" {
					out <- llm.TextChunk{Text: ch.Delta.Content}
				}
				if ch.FinishReason != "" {
					out <- llm.TextChunk{Final: true, FinishReason: ch.FinishReason}
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()
	return out, errCh
}

type embeddingsBuilder struct {
	client *openai.Client
	req    *llm.EmbeddingsRequest
}

func (b *embeddingsBuilder) derive(mutate func(r *llm.EmbeddingsRequest)) *embeddingsBuilder {
	req := b.req.Clone()
	mutate(req)
	return &embeddingsBuilder{client: b.client, req: req}
}

func (b *embeddingsBuilder) Using(model string) llm.EmbeddingsBuilder {
	return b.derive(func(r *llm.EmbeddingsRequest) { r.Model = model })
}

func (b *embeddingsBuilder) FromInput(input string) llm.EmbeddingsBuilder {
	return b.derive(func(r *llm.EmbeddingsRequest) { r.Inputs = append(r.Inputs, input) })
}

func (b *embeddingsBuilder) FromInputs(inputs ...string) llm.EmbeddingsBuilder {
	return b.derive(func(r *llm.EmbeddingsRequest) { r.Inputs = append(r.Inputs, inputs...) })
}

func (b *embeddingsBuilder) Request() *llm.EmbeddingsRequest { return b.req }

func (b *embeddingsBuilder) Generate(ctx context.Context) (*llm.EmbeddingsResponse, error) {
	if len(b.req.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	resp, err := b.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: b.req.Inputs},
		Model: b.req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}
	result := &llm.EmbeddingsResponse{
		Usage: &llm.TokenUsage{
			PromptTokens: int(resp.Usage.PromptTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}
	for _, d := range resp.Data {
		result.Embeddings = append(result.Embeddings, llm.Embedding{
			Index:  int(d.Index),
			Values: d.Embedding,
		})
	}
	return result, nil
}
