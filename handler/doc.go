// Package handler ships ready-made pipeline handlers for cross-cutting
// concerns: structured logging of chain runs, OpenTelemetry span management
// across before/after hooks, and static metadata injection.
//
// All handlers follow the pipeline contract: they receive the context and
// the next continuation, and pass control downstream unless short-circuiting
// is their documented purpose (none of the built-ins short-circuit).
package handler
