// Package atlas provides a high-level façade over the pipeline core and the
// proxied LLM client surface. Most applications interact with this package
// by:
//  1. Creating an Atlas via New() (optionally overriding the client, logger,
//     resolver or configuration)
//  2. Registering handlers on the predefined interception events with On,
//     OnFunc or OnRef
//  3. Issuing calls through the proxied builders (Text, Embeddings, Image,
//     Moderation), whose terminal methods run the matching before/after
//     chains
//
// The façade delegates chain materialization to pipeline.Registry and
// execution to pipeline.Runner while keeping setup ergonomics concise. All
// defaults are safe for local development and testing; production
// deployments typically supply a real provider client and a structured
// logger.
package atlas

import (
	"github.com/hupe1980/atlas/config"
	"github.com/hupe1980/atlas/llm"
	"github.com/hupe1980/atlas/logging"
	"github.com/hupe1980/atlas/pipeline"
	"github.com/hupe1980/atlas/proxy"
)

// Lifecycle events outside the proxied call surface. They are defined at
// startup like the proxy events and run by host applications around their
// own agent loops.
const (
	EventBeforeAgent = "agent.before_execute"
	EventAfterAgent  = "agent.after_execute"
)

// Options configures the Atlas instance.
type Options struct {
	// Client is the underlying LLM provider surface. Defaults to the mock
	// client, which is deterministic and offline.
	Client llm.Client

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Resolver turns ref-registered handlers into instances, typically
	// backed by the host's dependency injection container.
	Resolver pipeline.Resolver

	// Config seeds the pipeline activation surface. Defaults to everything
	// enabled.
	Config *config.Config
}

// Atlas is the high-level façade aggregating the registry, the runner and
// the proxied client.
type Atlas struct {
	opts     Options
	registry *pipeline.Registry
	runner   *pipeline.Runner
}

// New creates a new Atlas instance with optional overrides. Every proxy
// event plus the agent lifecycle events are predefined and active unless the
// configuration disables them.
func New(optFns ...func(o *Options)) *Atlas {
	opts := Options{
		Client: llm.NewMockClient(),
		Logger: logging.NoOpLogger{},
		Config: config.Default(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	registry := pipeline.NewRegistry(func(o *pipeline.RegistryOptions) {
		o.Resolver = opts.Resolver
	})
	for _, event := range proxy.Events() {
		registry.Define(event)
	}
	registry.Define(EventBeforeAgent)
	registry.Define(EventAfterAgent)

	if opts.Config != nil {
		if err := opts.Config.Apply(registry); err != nil {
			// Config may disable events the host never defined.
			opts.Logger.Warn("applying pipeline config", "error", err)
		}
	}

	runner := pipeline.NewRunner(registry, func(o *pipeline.RunnerOptions) {
		o.Logger = opts.Logger
	})

	return &Atlas{opts: opts, registry: registry, runner: runner}
}

// On registers a handler on the named event.
func (a *Atlas) On(event string, h pipeline.Handler, priority int) error {
	return a.registry.Register(event, h, priority)
}

// OnFunc registers a plain function on the named event.
func (a *Atlas) OnFunc(event string, fn pipeline.HandlerFunc, priority int) error {
	return a.registry.Register(event, fn, priority)
}

// OnRef registers a handler reference on the named event, resolved through
// the configured Resolver the first time the event runs.
func (a *Atlas) OnRef(event, ref string, priority int) error {
	return a.registry.RegisterRef(event, ref, priority)
}

// SetActive toggles the named event's chain on or off.
func (a *Atlas) SetActive(event string, active bool) error {
	return a.registry.SetActive(event, active)
}

// Text returns a proxied text builder whose Generate and Stream run the
// text event chains.
func (a *Atlas) Text() *proxy.Text {
	return proxy.NewText(a.opts.Client.Text(), a.runner)
}

// Embeddings returns a proxied embeddings builder.
func (a *Atlas) Embeddings() *proxy.Embeddings {
	return proxy.NewEmbeddings(a.opts.Client.Embeddings(), a.runner)
}

// Image returns a proxied image builder.
func (a *Atlas) Image() *proxy.Image {
	return proxy.NewImage(a.opts.Client.Image(), a.runner)
}

// Moderation returns a proxied moderation builder.
func (a *Atlas) Moderation() *proxy.Moderation {
	return proxy.NewModeration(a.opts.Client.Moderation(), a.runner)
}

// Registry exposes the underlying registry for advanced wiring.
func (a *Atlas) Registry() *pipeline.Registry { return a.registry }

// Runner exposes the underlying runner, e.g. for running the agent
// lifecycle events from host code.
func (a *Atlas) Runner() *pipeline.Runner { return a.runner }
