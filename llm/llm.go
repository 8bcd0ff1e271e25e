package llm

import "errors"

// ErrUnsupported is returned by terminal calls on modules a provider does not
// implement.
var ErrUnsupported = errors.New("llm: operation not supported by this provider")

// Message is one conversational turn sent to a text model.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TextRequest is the normalized input of a text generation call.
type TextRequest struct {
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Prompt       string    `json:"prompt,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

// Clone returns a deep copy so fluent builders can derive new requests
// without sharing message slices.
func (r *TextRequest) Clone() *TextRequest {
	cp := *r
	cp.Messages = append([]Message(nil), r.Messages...)
	return &cp
}

// TextResponse is the final result of a text generation call.
type TextResponse struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// TextChunk is one element of a streamed text generation.
type TextChunk struct {
	Text         string `json:"text"`
	Final        bool   `json:"final"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// EmbeddingsRequest is the normalized input of an embeddings call.
type EmbeddingsRequest struct {
	Model  string   `json:"model"`
	Inputs []string `json:"inputs"`
}

// Clone returns a deep copy of the request.
func (r *EmbeddingsRequest) Clone() *EmbeddingsRequest {
	cp := *r
	cp.Inputs = append([]string(nil), r.Inputs...)
	return &cp
}

// Embedding is one vector in an embeddings response, index-aligned with the
// request inputs.
type Embedding struct {
	Index  int       `json:"index"`
	Values []float64 `json:"values"`
}

// EmbeddingsResponse is the result of an embeddings call.
type EmbeddingsResponse struct {
	Embeddings []Embedding `json:"embeddings"`
	Usage      *TokenUsage `json:"usage,omitempty"`
}

// ImageRequest is the normalized input of an image generation call.
type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
}

// Clone returns a copy of the request.
func (r *ImageRequest) Clone() *ImageRequest {
	cp := *r
	return &cp
}

// ImageResponse is the result of an image generation call.
type ImageResponse struct {
	URL           string `json:"url,omitempty"`
	Base64        string `json:"base64,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ModerationRequest is the normalized input of a moderation call.
type ModerationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// Clone returns a copy of the request.
func (r *ModerationRequest) Clone() *ModerationRequest {
	cp := *r
	return &cp
}

// ModerationResponse is the result of a moderation call.
type ModerationResponse struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories,omitempty"`
}
