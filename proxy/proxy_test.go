package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/atlas/internal/testutil"
	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
)

func newRunner(t *testing.T) (*pipeline.Registry, *pipeline.Runner) {
	t.Helper()
	registry := pipeline.NewRegistry()
	for _, event := range Events() {
		registry.Define(event)
	}
	return registry, pipeline.NewRunner(registry)
}

func TestText_FluentCallsDoNotRunHooks(t *testing.T) {
	registry, runner := newRunner(t)

	counter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeText, counter, 0))
	require.NoError(t, registry.Register(EventAfterText, counter, 0))

	p := NewText(llm.NewMockClient().Text(), runner).
		Using("model-a").
		WithPrompt("hello").
		WithMaxTokens(100)

	// Only the terminal call triggers the chains: one before + one after.
	assert.Equal(t, 0, counter.Count())

	resp, err := p.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 2, counter.Count())
}

func TestText_BeforeHookSeesRequest(t *testing.T) {
	registry, runner := newRunner(t)

	var model string
	require.NoError(t, registry.Register(EventBeforeText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			if b, ok := pc.Request.(llm.TextBuilder); ok {
				model = b.Request().Model
			}
			return next(ctx, pc)
		}), 0))

	_, err := NewText(llm.NewMockClient().Text(), runner).
		Using("model-b").
		WithPrompt("hi").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "model-b", model)
}

func TestText_BeforeHookReplacesRequest(t *testing.T) {
	registry, runner := newRunner(t)

	require.NoError(t, registry.Register(EventBeforeText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			if b, ok := pc.Request.(llm.TextBuilder); ok {
				pc.Request = b.WithPrompt("replaced")
			}
			return next(ctx, pc)
		}), 0))

	resp, err := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("original").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Mock response to: replaced", resp.Text)
}

func TestText_AfterHookReplacesResponse(t *testing.T) {
	registry, runner := newRunner(t)

	require.NoError(t, registry.Register(EventAfterText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			pc.Response = &llm.TextResponse{ID: "rewritten", Text: "[redacted]"}
			return next(ctx, pc)
		}), 0))

	resp, err := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("secret").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "[redacted]", resp.Text)
}

func TestText_BeforeHookErrorAbortsCall(t *testing.T) {
	registry, runner := newRunner(t)

	boom := errors.New("blocked")
	require.NoError(t, registry.Register(EventBeforeText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			return nil, boom
		}), 0))

	resp, err := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("hi").
		Generate(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Nil(t, resp)
}

func TestText_RuntimeMiddlewareIsolation(t *testing.T) {
	_, runner := newRunner(t)
	client := llm.NewMockClient()

	counter := testutil.NewCounter()
	withMiddleware := NewText(client.Text(), runner).
		WithPrompt("hi").
		WithMiddleware(EventBeforeText, counter, 0)
	plain := NewText(client.Text(), runner).WithPrompt("hi")

	_, err := withMiddleware.Generate(context.Background())
	require.NoError(t, err)
	_, err = plain.Generate(context.Background())
	require.NoError(t, err)

	// Only the proxy the middleware was attached to runs it.
	assert.Equal(t, 1, counter.Count())
}

func TestText_RuntimeMiddlewareDoesNotLeakToRegistry(t *testing.T) {
	registry, runner := newRunner(t)

	p := NewText(llm.NewMockClient().Text(), runner).
		WithMiddleware(EventBeforeText, testutil.NewCounter(), 0)
	_ = p

	handlers, err := registry.HandlersFor(EventBeforeText)
	require.NoError(t, err)
	assert.Empty(t, handlers)
}

func TestText_MetadataVisibleAcrossBeforeAndAfter(t *testing.T) {
	registry, runner := newRunner(t)

	require.NoError(t, registry.Register(EventBeforeText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			pc.Metadata["injected"] = "by-before"
			return next(ctx, pc)
		}), 0))

	var fromCaller, fromBefore any
	require.NoError(t, registry.Register(EventAfterText, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			fromCaller = pc.Metadata["tenant"]
			fromBefore = pc.Metadata["injected"]
			return next(ctx, pc)
		}), 0))

	_, err := NewText(llm.NewMockClient().Text(), runner).
		WithMetadata(map[string]any{"tenant": "acme"}).
		WithPrompt("hi").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "acme", fromCaller)
	assert.Equal(t, "by-before", fromBefore)
}

func TestText_WithMetadata_CopyOnWrite(t *testing.T) {
	_, runner := newRunner(t)

	base := NewText(llm.NewMockClient().Text(), runner).
		WithMetadata(map[string]any{"a": 1})
	derived := base.WithMetadata(map[string]any{"b": 2})

	assert.Equal(t, map[string]any{"a": 1}, base.Metadata())
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, derived.Metadata())
}

func TestText_InactivePipelinePassesThrough(t *testing.T) {
	registry, runner := newRunner(t)

	counter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeText, counter, 0))
	require.NoError(t, registry.SetActive(EventBeforeText, false))

	resp, err := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("hi").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", resp.Text)
	assert.Equal(t, 0, counter.Count())
}

func TestText_Stream_RunsBeforeStreamOnly(t *testing.T) {
	registry, runner := newRunner(t)

	streamCounter := testutil.NewCounter()
	generateCounter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeStream, streamCounter, 0))
	require.NoError(t, registry.Register(EventBeforeText, generateCounter, 0))

	chunks, errCh := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("hi").
		Stream(context.Background())

	var text string
	for chunk := range chunks {
		text += chunk.Text
	}
	require.NoError(t, <-errCh)

	assert.NotEmpty(t, text)
	assert.Equal(t, 1, streamCounter.Count())
	assert.Equal(t, 0, generateCounter.Count())
}

func TestText_Stream_BeforeHookErrorShortCircuits(t *testing.T) {
	registry, runner := newRunner(t)

	boom := errors.New("stream blocked")
	require.NoError(t, registry.Register(EventBeforeStream, pipeline.HandlerFunc(
		func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
			return nil, boom
		}), 0))

	chunks, errCh := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("hi").
		Stream(context.Background())

	_, open := <-chunks
	assert.False(t, open)
	require.ErrorIs(t, <-errCh, boom)
}

func TestEmbeddings_AroundHooks(t *testing.T) {
	registry, runner := newRunner(t)

	counter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeEmbeddings, counter, 0))
	require.NoError(t, registry.Register(EventAfterEmbeddings, counter, 0))

	resp, err := NewEmbeddings(llm.NewMockClient().Embeddings(), runner).
		FromInput("hello world").
		Generate(context.Background())

	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 1)
	assert.Equal(t, 2, counter.Count())
}

func TestImage_AroundHooks(t *testing.T) {
	registry, runner := newRunner(t)

	counter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeImage, counter, 0))
	require.NoError(t, registry.Register(EventAfterImage, counter, 0))

	resp, err := NewImage(llm.NewMockClient().Image(), runner).
		WithPrompt("a lighthouse").
		Generate(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, resp.URL)
	assert.Equal(t, 2, counter.Count())
}

func TestModeration_AroundHooks(t *testing.T) {
	registry, runner := newRunner(t)

	counter := testutil.NewCounter()
	require.NoError(t, registry.Register(EventBeforeModeration, counter, 0))
	require.NoError(t, registry.Register(EventAfterModeration, counter, 0))

	resp, err := NewModeration(llm.NewMockClient().Moderation(), runner).
		WithInput("this contains forbidden words").
		Check(context.Background())

	require.NoError(t, err)
	assert.True(t, resp.Flagged)
	assert.Equal(t, 2, counter.Count())
}

func TestText_ShortCircuitBeforeHookSkipsNothingDownstream(t *testing.T) {
	registry, runner := newRunner(t)

	// A short-circuiting before handler stops later before-handlers but the
	// real call still happens with the context it returned.
	recorder := testutil.NewRecorder()
	require.NoError(t, registry.Register(EventBeforeText, recorder.ShortCircuit("gate"), 10))
	require.NoError(t, registry.Register(EventBeforeText, recorder.Handler("unreached"), 0))

	resp, err := NewText(llm.NewMockClient().Text(), runner).
		WithPrompt("hi").
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", resp.Text)
	assert.Equal(t, []string{"gate"}, recorder.Calls())
}
