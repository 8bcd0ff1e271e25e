// Package pipeline implements the named-event middleware core of Atlas.
//
// A pipeline is an ordered chain of handlers attached to one lifecycle event
// (for example "text.before_text"). The package provides:
//
//   - Registry: the process-wide catalog of event names and their handler
//     chains, with priority ordering and an active/inactive toggle per event
//   - Runner: the chain-of-responsibility executor that threads a mutable
//     Context through the handlers with an explicit next continuation
//   - Handler/HandlerFunc: the unit of behavior registered against an event
//
// Handlers may be supplied as ready instances or as string references that
// are resolved lazily (once) through a host-supplied Resolver, allowing the
// embedding application to construct handlers with its own dependency
// injection facility.
//
// Execution order is descending by priority; handlers registered with equal
// priority run in registration order. A handler that returns without calling
// next short-circuits the remainder of the chain; this is an intentional
// escape hatch, not an error.
//
// The core performs no catching, wrapping, retrying or logging of errors:
// anything a handler or the wrapped terminal call returns propagates to the
// caller unchanged. Resilience policy belongs to the consumer.
package pipeline
