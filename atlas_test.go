package atlas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/atlas/config"
	"github.com/hupe1980/atlas/internal/testutil"
	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/pipeline"
	"github.com/hupe1980/atlas/proxy"
)

func TestNew_PredefinesEvents(t *testing.T) {
	a := New()

	for _, event := range proxy.Events() {
		assert.True(t, a.Registry().Active(event), event)
	}
	assert.True(t, a.Registry().Active(EventBeforeAgent))
	assert.True(t, a.Registry().Active(EventAfterAgent))
}

func TestNew_ConfigDisablesPipelines(t *testing.T) {
	a := New(func(o *Options) {
		o.Config = &config.Config{Pipelines: config.PipelinesConfig{
			Enabled:  true,
			Disabled: []string{proxy.EventBeforeText},
		}}
	})

	assert.False(t, a.Registry().Active(proxy.EventBeforeText))
	assert.True(t, a.Registry().Active(proxy.EventAfterText))
}

func TestNew_GlobalDisableMakesCallsPassThrough(t *testing.T) {
	a := New(func(o *Options) {
		o.Config = &config.Config{Pipelines: config.PipelinesConfig{Enabled: false}}
	})

	counter := testutil.NewCounter()
	require.NoError(t, a.On(proxy.EventBeforeText, counter, 0))

	resp, err := a.Text().WithPrompt("hi").Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", resp.Text)
	assert.Equal(t, 0, counter.Count())
}

func TestAtlas_TextEndToEnd(t *testing.T) {
	client := llm.NewMockClient()
	client.AddResponse("translated prompt", "bonjour")

	a := New(func(o *Options) {
		o.Client = client
	})

	// Before hook rewrites the prompt, after hook tags the response id.
	require.NoError(t, a.OnFunc(proxy.EventBeforeText, func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		if b, ok := pc.Request.(llm.TextBuilder); ok {
			pc.Request = b.WithPrompt("translated prompt")
		}
		return next(ctx, pc)
	}, 0))
	require.NoError(t, a.OnFunc(proxy.EventAfterText, func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		if resp, ok := pc.Response.(*llm.TextResponse); ok {
			resp.ID = "tagged"
		}
		return next(ctx, pc)
	}, 0))

	resp, err := a.Text().WithPrompt("hello").Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "bonjour", resp.Text)
	assert.Equal(t, "tagged", resp.ID)
}

func TestAtlas_FluentChainRunsHooksOnce(t *testing.T) {
	a := New()

	before := testutil.NewCounter()
	after := testutil.NewCounter()
	require.NoError(t, a.On(proxy.EventBeforeText, before, 0))
	require.NoError(t, a.On(proxy.EventAfterText, after, 0))

	_, err := a.Text().
		Using("mock-text").
		WithSystemPrompt("be brief").
		WithPrompt("hi").
		WithTemperature(0.2).
		Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, before.Count())
	assert.Equal(t, 1, after.Count())
}

func TestAtlas_RuntimeMiddlewareScopedToOneCall(t *testing.T) {
	a := New()

	counter := testutil.NewCounter()
	scoped := a.Text().WithPrompt("hi").WithMiddleware(proxy.EventBeforeText, counter, 0)

	_, err := scoped.Generate(context.Background())
	require.NoError(t, err)
	_, err = a.Text().WithPrompt("hi").Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, counter.Count())
}

func TestAtlas_OnRefResolvesThroughResolver(t *testing.T) {
	counter := testutil.NewCounter()
	a := New(func(o *Options) {
		o.Resolver = pipeline.ResolverFunc(func(ref string) (pipeline.Handler, error) {
			require.Equal(t, "handlers.audit", ref)
			return counter, nil
		})
	})

	require.NoError(t, a.OnRef(proxy.EventBeforeText, "handlers.audit", 0))

	_, err := a.Text().WithPrompt("hi").Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, counter.Count())
}

func TestAtlas_SetActive(t *testing.T) {
	a := New()

	counter := testutil.NewCounter()
	require.NoError(t, a.On(proxy.EventBeforeText, counter, 0))
	require.NoError(t, a.SetActive(proxy.EventBeforeText, false))

	_, err := a.Text().WithPrompt("hi").Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, counter.Count())

	require.NoError(t, a.SetActive(proxy.EventBeforeText, true))
	_, err = a.Text().WithPrompt("hi").Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counter.Count())
}

func TestAtlas_AgentLifecycleEvents(t *testing.T) {
	a := New()

	var order []string
	require.NoError(t, a.OnFunc(EventBeforeAgent, func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		order = append(order, "before")
		return next(ctx, pc)
	}, 0))
	require.NoError(t, a.OnFunc(EventAfterAgent, func(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
		order = append(order, "after")
		return next(ctx, pc)
	}, 0))

	ctx := context.Background()
	pc := pipeline.NewContext("agent")
	pc, err := a.Runner().RunIfActive(ctx, EventBeforeAgent, pc)
	require.NoError(t, err)
	_, err = a.Runner().RunIfActive(ctx, EventAfterAgent, pc)
	require.NoError(t, err)

	assert.Equal(t, []string{"before", "after"}, order)
}

func TestAtlas_EmbeddingsImageModeration(t *testing.T) {
	a := New()

	embeddings, err := a.Embeddings().FromInput("hello").Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, embeddings.Embeddings, 1)

	image, err := a.Image().WithPrompt("a lighthouse").Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, image.URL)

	moderation, err := a.Moderation().WithInput("forbidden content").Check(context.Background())
	require.NoError(t, err)
	assert.True(t, moderation.Flagged)
}
