// Package llm defines the provider-neutral request builders and response
// types that Atlas instruments. A Client groups one provider's builders by
// module (text generation, embeddings, image generation, moderation); each
// builder is fluent and immutable, so configuration calls return derived
// builders and a terminal call (Generate, Stream, Check) performs the actual
// provider operation.
//
// The builders here are the objects the proxy package wraps: chainable calls
// pass through untouched while terminal calls are surrounded by before/after
// pipeline hooks. Provider implementations live in the llm/openai and
// llm/anthropic subpackages; MockClient backs tests and examples.
package llm
