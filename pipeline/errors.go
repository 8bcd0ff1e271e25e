package pipeline

import "fmt"

// NotDefinedError reports an operation against a pipeline name that was never
// defined. Registration against undefined names fails loudly so typos are
// caught when handlers are wired up rather than silently never running.
type NotDefinedError struct {
	Name string
}

func (e *NotDefinedError) Error() string {
	return fmt.Sprintf("pipeline %q is not defined", e.Name)
}

// ResolveError reports a handler reference that could not be resolved to an
// instance.
type ResolveError struct {
	Pipeline string
	Ref      string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("pipeline %q: resolving handler %q: %v", e.Pipeline, e.Ref, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
