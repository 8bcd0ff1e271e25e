package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(tag string, calls *[]string) HandlerFunc {
	return func(ctx context.Context, pc *Context, next Next) (*Context, error) {
		*calls = append(*calls, tag)
		return next(ctx, pc)
	}
}

func TestRegistry_Define_Idempotent(t *testing.T) {
	r := NewRegistry()

	r.Define("text.before_text")
	require.NoError(t, r.Register("text.before_text", passThrough("a", &[]string{}), 0))

	// Re-declaring must not wipe existing handlers or the active flag.
	require.NoError(t, r.SetActive("text.before_text", false))
	r.Define("text.before_text")

	assert.False(t, r.Active("text.before_text"))
	handlers, err := r.HandlersFor("text.before_text")
	require.NoError(t, err)
	assert.Len(t, handlers, 1)
}

func TestRegistry_Register_UnknownPipeline(t *testing.T) {
	r := NewRegistry()

	err := r.Register("missing", passThrough("a", &[]string{}), 0)

	var notDefined *NotDefinedError
	require.ErrorAs(t, err, &notDefined)
	assert.Equal(t, "missing", notDefined.Name)
}

func TestRegistry_SetActive_UnknownPipeline(t *testing.T) {
	r := NewRegistry()

	err := r.SetActive("missing", false)

	var notDefined *NotDefinedError
	require.ErrorAs(t, err, &notDefined)
}

func TestRegistry_HandlersFor_PriorityOrdering(t *testing.T) {
	r := NewRegistry()
	r.Define("ev")

	var calls []string
	require.NoError(t, r.Register("ev", passThrough("low", &calls), -5))
	require.NoError(t, r.Register("ev", passThrough("high", &calls), 10))
	require.NoError(t, r.Register("ev", passThrough("mid", &calls), 0))

	handlers, err := r.HandlersFor("ev")
	require.NoError(t, err)
	require.Len(t, handlers, 3)

	pc := NewContext("ev")
	for _, h := range handlers {
		_, err := h.Handle(context.Background(), pc, func(_ context.Context, pc *Context) (*Context, error) {
			return pc, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"high", "mid", "low"}, calls)
}

func TestRegistry_HandlersFor_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Define("ev")

	var calls []string
	require.NoError(t, r.Register("ev", passThrough("a", &calls), 0))
	require.NoError(t, r.Register("ev", passThrough("b", &calls), 0))
	require.NoError(t, r.Register("ev", passThrough("c", &calls), 0))

	handlers, err := r.HandlersFor("ev")
	require.NoError(t, err)

	pc := NewContext("ev")
	for _, h := range handlers {
		_, err := h.Handle(context.Background(), pc, func(_ context.Context, pc *Context) (*Context, error) {
			return pc, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestRegistry_HandlersFor_UndefinedYieldsEmpty(t *testing.T) {
	r := NewRegistry()

	handlers, err := r.HandlersFor("missing")

	require.NoError(t, err)
	assert.Empty(t, handlers)
}

func TestRegistry_Definitions_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Define("a")
	r.Define("b")
	require.NoError(t, r.SetActive("b", false))

	defs := r.Definitions()

	assert.Equal(t, map[string]bool{"a": true, "b": false}, defs)

	// Mutating the snapshot must not affect the registry.
	defs["a"] = false
	assert.True(t, r.Active("a"))
}

func TestRegistry_RegisterRef_LazyResolution(t *testing.T) {
	resolved := 0
	r := NewRegistry(func(o *RegistryOptions) {
		o.Resolver = ResolverFunc(func(ref string) (Handler, error) {
			resolved++
			return HandlerFunc(func(ctx context.Context, pc *Context, next Next) (*Context, error) {
				return next(ctx, pc)
			}), nil
		})
	})
	r.Define("ev")
	require.NoError(t, r.RegisterRef("ev", "handlers.audit", 0))

	// Registration alone must not resolve.
	assert.Equal(t, 0, resolved)

	_, err := r.HandlersFor("ev")
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	// Second materialization reuses the cached instance.
	_, err = r.HandlersFor("ev")
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
}

func TestRegistry_RegisterRef_ResolverFailure(t *testing.T) {
	boom := errors.New("unknown service")
	r := NewRegistry(func(o *RegistryOptions) {
		o.Resolver = ResolverFunc(func(ref string) (Handler, error) {
			return nil, boom
		})
	})
	r.Define("ev")
	require.NoError(t, r.RegisterRef("ev", "handlers.audit", 0))

	_, err := r.HandlersFor("ev")

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "ev", resolveErr.Pipeline)
	assert.Equal(t, "handlers.audit", resolveErr.Ref)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_RegisterRef_NoResolverConfigured(t *testing.T) {
	r := NewRegistry()
	r.Define("ev")
	require.NoError(t, r.RegisterRef("ev", "handlers.audit", 0))

	_, err := r.HandlersFor("ev")

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.Define("ev")
	require.NoError(t, r.Register("ev", passThrough("a", &[]string{}), 0))

	r.Reset()

	assert.False(t, r.Defined("ev"))
	assert.Empty(t, r.Definitions())
}
