// Package proxy wraps the fluent llm builders with before/after pipeline
// instrumentation.
//
// Each decorator (Text, Embeddings, Image, Moderation) implements the same
// fluent surface as the builder it wraps. Chainable configuration calls pass
// straight through to the wrapped builder and re-wrap the derived builder so
// chaining keeps working and keeps the accumulated metadata and per-request
// middleware. Terminal calls (the ones that perform the real provider
// operation) build a pipeline.Context, run the module's before event, invoke
// the possibly handler-replaced request, then run the after event and return
// the possibly handler-replaced response.
//
// Streaming terminals are the one special case: only the before hook runs
// eagerly, and the lazily produced chunk channel is forwarded to the caller
// untouched.
//
// Metadata attached via WithMetadata and middleware attached via
// WithMiddleware are scoped to the proxy instance chain: copy-on-write clones
// carry them through fluent calls, and nothing is ever written to the shared
// registry, so unrelated requests are unaffected.
package proxy
