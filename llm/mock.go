package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a lightweight in-memory Client useful for tests & examples.
// Text responses can be canned per prompt; unknown prompts get a
// deterministic echo. Embeddings are derived from input bytes so assertions
// stay stable across runs.
type MockClient struct {
	responses map[string]string
	flagWords []string
}

// NewMockClient constructs a MockClient with no canned responses.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: make(map[string]string),
		flagWords: []string{"forbidden"},
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (c *MockClient) AddResponse(prompt, response string) { c.responses[prompt] = response }

// FlagWord marks a word that the mock moderation module flags.
func (c *MockClient) FlagWord(word string) { c.flagWords = append(c.flagWords, word) }

// Text implements Client.
func (c *MockClient) Text() TextBuilder {
	return &mockTextBuilder{client: c, req: &TextRequest{Model: "mock-text", Temperature: 0.7}}
}

// Embeddings implements Client.
func (c *MockClient) Embeddings() EmbeddingsBuilder {
	return &mockEmbeddingsBuilder{req: &EmbeddingsRequest{Model: "mock-embed"}}
}

// Image implements Client.
func (c *MockClient) Image() ImageBuilder {
	return &mockImageBuilder{req: &ImageRequest{Model: "mock-image", Size: "1024x1024"}}
}

// Moderation implements Client.
func (c *MockClient) Moderation() ModerationBuilder {
	return &mockModerationBuilder{client: c, req: &ModerationRequest{Model: "mock-moderation"}}
}

func (c *MockClient) completion(req *TextRequest) string {
	prompt := req.Prompt
	if prompt == "" && len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}
	if full, ok := c.responses[prompt]; ok {
		return full
	}
	return fmt.Sprintf("Mock response to: %s", prompt)
}

type mockTextBuilder struct {
	client *MockClient
	req    *TextRequest
}

func (b *mockTextBuilder) derive(mutate func(r *TextRequest)) *mockTextBuilder {
	req := b.req.Clone()
	mutate(req)
	return &mockTextBuilder{client: b.client, req: req}
}

func (b *mockTextBuilder) Using(model string) TextBuilder {
	return b.derive(func(r *TextRequest) { r.Model = model })
}

func (b *mockTextBuilder) WithSystemPrompt(prompt string) TextBuilder {
	return b.derive(func(r *TextRequest) { r.SystemPrompt = prompt })
}

func (b *mockTextBuilder) WithPrompt(prompt string) TextBuilder {
	return b.derive(func(r *TextRequest) { r.Prompt = prompt })
}

func (b *mockTextBuilder) WithMessages(msgs ...Message) TextBuilder {
	return b.derive(func(r *TextRequest) { r.Messages = append(r.Messages, msgs...) })
}

func (b *mockTextBuilder) WithMaxTokens(n int) TextBuilder {
	return b.derive(func(r *TextRequest) { r.MaxTokens = n })
}

func (b *mockTextBuilder) WithTemperature(t float64) TextBuilder {
	return b.derive(func(r *TextRequest) { r.Temperature = t })
}

func (b *mockTextBuilder) Request() *TextRequest { return b.req }

func (b *mockTextBuilder) Generate(ctx context.Context) (*TextResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := b.client.completion(b.req)
	return &TextResponse{
		ID:           "mock-resp",
		Text:         full,
		FinishReason: "stop",
		Usage: &TokenUsage{
			PromptTokens:     len(strings.Fields(b.req.Prompt)),
			CompletionTokens: len(strings.Fields(full)),
			TotalTokens:      len(strings.Fields(b.req.Prompt)) + len(strings.Fields(full)),
		},
	}, nil
}

// Stream emits per-rune chunks followed by a final chunk, mirroring how
// provider deltas arrive.
func (b *mockTextBuilder) Stream(ctx context.Context) (<-chan TextChunk, <-chan error) {
	out := make(chan TextChunk, 16)
	errCh := make(chan error, 1)
	full := b.client.completion(b.req)
	go func() {
		defer close(out)
		defer close(errCh)
		for _, r := range full {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- TextChunk{Text: string(r)}:
			}
		}
		out <- TextChunk{Final: true, FinishReason: "stop"}
	}()
	return out, errCh
}

type mockEmbeddingsBuilder struct {
	req *EmbeddingsRequest
}

func (b *mockEmbeddingsBuilder) derive(mutate func(r *EmbeddingsRequest)) *mockEmbeddingsBuilder {
	req := b.req.Clone()
	mutate(req)
	return &mockEmbeddingsBuilder{req: req}
}

func (b *mockEmbeddingsBuilder) Using(model string) EmbeddingsBuilder {
	return b.derive(func(r *EmbeddingsRequest) { r.Model = model })
}

func (b *mockEmbeddingsBuilder) FromInput(input string) EmbeddingsBuilder {
	return b.derive(func(r *EmbeddingsRequest) { r.Inputs = append(r.Inputs, input) })
}

func (b *mockEmbeddingsBuilder) FromInputs(inputs ...string) EmbeddingsBuilder {
	return b.derive(func(r *EmbeddingsRequest) { r.Inputs = append(r.Inputs, inputs...) })
}

func (b *mockEmbeddingsBuilder) Request() *EmbeddingsRequest { return b.req }

func (b *mockEmbeddingsBuilder) Generate(ctx context.Context) (*EmbeddingsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b.req.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	resp := &EmbeddingsResponse{}
	for i, input := range b.req.Inputs {
		vec := make([]float64, 8)
		for j, ch := range []byte(input) {
			vec[j%8] += float64(ch) / 255
		}
		resp.Embeddings = append(resp.Embeddings, Embedding{Index: i, Values: vec})
	}
	return resp, nil
}

type mockImageBuilder struct {
	req *ImageRequest
}

func (b *mockImageBuilder) derive(mutate func(r *ImageRequest)) *mockImageBuilder {
	req := b.req.Clone()
	mutate(req)
	return &mockImageBuilder{req: req}
}

func (b *mockImageBuilder) Using(model string) ImageBuilder {
	return b.derive(func(r *ImageRequest) { r.Model = model })
}

func (b *mockImageBuilder) WithPrompt(prompt string) ImageBuilder {
	return b.derive(func(r *ImageRequest) { r.Prompt = prompt })
}

func (b *mockImageBuilder) WithSize(size string) ImageBuilder {
	return b.derive(func(r *ImageRequest) { r.Size = size })
}

func (b *mockImageBuilder) Request() *ImageRequest { return b.req }

func (b *mockImageBuilder) Generate(ctx context.Context) (*ImageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ImageResponse{URL: fmt.Sprintf("https://images.invalid/%s/%s", b.req.Size, strings.ReplaceAll(b.req.Prompt, " ", "-"))}, nil
}

type mockModerationBuilder struct {
	client *MockClient
	req    *ModerationRequest
}

func (b *mockModerationBuilder) derive(mutate func(r *ModerationRequest)) *mockModerationBuilder {
	req := b.req.Clone()
	mutate(req)
	return &mockModerationBuilder{client: b.client, req: req}
}

func (b *mockModerationBuilder) Using(model string) ModerationBuilder {
	return b.derive(func(r *ModerationRequest) { r.Model = model })
}

func (b *mockModerationBuilder) WithInput(input string) ModerationBuilder {
	return b.derive(func(r *ModerationRequest) { r.Input = input })
}

func (b *mockModerationBuilder) Request() *ModerationRequest { return b.req }

func (b *mockModerationBuilder) Check(ctx context.Context) (*ModerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := &ModerationResponse{Categories: map[string]bool{}}
	for _, w := range b.client.flagWords {
		if strings.Contains(strings.ToLower(b.req.Input), w) {
			resp.Flagged = true
			resp.Categories[w] = true
		}
	}
	return resp, nil
}
