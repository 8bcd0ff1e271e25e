package pipeline

import (
	"errors"
	"sort"
	"sync"
)

// registration is the stored form of a handler entry. seq preserves
// registration order so equal priorities tie-break deterministically.
type registration struct {
	handler  Handler
	ref      string
	priority int
	seq      int
}

// definition holds one named pipeline: its activation flag and its handler
// list in registration order.
type definition struct {
	active bool
	regs   []*registration
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Resolver turns ref-registered handlers into instances. Only required
	// when RegisterRef is used.
	Resolver Resolver
}

// Registry is the process-wide catalog of pipeline events and their handler
// chains. It is expected to be populated during application startup and read
// during request handling; all methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]*definition
	resolver Resolver
	seq      int
}

// NewRegistry creates an empty Registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		defs:     make(map[string]*definition),
		resolver: opts.Resolver,
	}
}

// Define declares that the named pipeline exists, active by default.
// Re-declaring an existing name is a no-op, not a conflict: callers such as
// module initializers may define the same event independently.
func (r *Registry) Define(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[name]; ok {
		return
	}
	r.defs[name] = &definition{active: true}
}

// Register appends a handler instance to the named pipeline's chain. The
// pipeline must have been defined; registering against an unknown name
// returns a *NotDefinedError so typos surface at wiring time.
func (r *Registry) Register(name string, h Handler, priority int) error {
	return r.register(name, &registration{handler: h, priority: priority})
}

// RegisterRef appends a handler reference to the named pipeline's chain. The
// reference is resolved through the registry's Resolver the first time the
// chain is materialized, then cached for subsequent runs.
func (r *Registry) RegisterRef(name, ref string, priority int) error {
	return r.register(name, &registration{ref: ref, priority: priority})
}

func (r *Registry) register(name string, reg *registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[name]
	if !ok {
		return &NotDefinedError{Name: name}
	}
	r.seq++
	reg.seq = r.seq
	def.regs = append(def.regs, reg)
	return nil
}

// SetActive toggles whether the runner executes the named pipeline's chain.
// Inactive pipelines pass contexts through RunIfActive unchanged.
func (r *Registry) SetActive(name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[name]
	if !ok {
		return &NotDefinedError{Name: name}
	}
	def.active = active
	return nil
}

// Defined reports whether the named pipeline has been declared.
func (r *Registry) Defined(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Active reports whether the named pipeline is defined and active.
func (r *Registry) Active(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return ok && def.active
}

// Definitions returns a snapshot of all defined pipeline names mapped to
// their active flag, for iteration such as bulk-disable at startup.
func (r *Registry) Definitions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.defs))
	for name, def := range r.defs {
		out[name] = def.active
	}
	return out
}

// HandlersFor returns the named pipeline's handlers ordered by descending
// priority with registration-order tie-break, resolving any ref-registered
// entries. An undefined or empty pipeline yields an empty slice.
func (r *Registry) HandlersFor(name string) ([]Handler, error) {
	return r.chain(name, nil)
}

// Reset removes all definitions and handlers. Bulk teardown for tests only;
// pipelines are never deleted individually during normal operation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*definition)
	r.seq = 0
}

// chain materializes the ordered handler list for a pipeline, merging any
// extra (runtime) registrations before the stable sort. Extra registrations
// keep attach order and sort after global handlers of equal priority because
// they are appended last.
func (r *Registry) chain(name string, extra []Registration) ([]Handler, error) {
	r.mu.RLock()
	var regs []*registration
	if def, ok := r.defs[name]; ok {
		regs = make([]*registration, len(def.regs))
		copy(regs, def.regs)
	}
	r.mu.RUnlock()

	for _, e := range extra {
		regs = append(regs, &registration{handler: e.Handler, ref: e.Ref, priority: e.Priority})
	}
	if len(regs) == 0 {
		return nil, nil
	}

	sort.SliceStable(regs, func(i, j int) bool {
		return regs[i].priority > regs[j].priority
	})

	handlers := make([]Handler, len(regs))
	for i, reg := range regs {
		h, err := r.resolve(name, reg)
		if err != nil {
			return nil, err
		}
		handlers[i] = h
	}
	return handlers, nil
}

// resolve returns the registration's handler, consulting the Resolver once
// for ref-registered entries and caching the instance.
func (r *Registry) resolve(name string, reg *registration) (Handler, error) {
	r.mu.RLock()
	h := reg.handler
	r.mu.RUnlock()
	if h != nil {
		return h, nil
	}

	if r.resolver == nil {
		return nil, &ResolveError{Pipeline: name, Ref: reg.ref, Err: errors.New("no resolver configured")}
	}
	resolved, err := r.resolver.Resolve(reg.ref)
	if err != nil {
		return nil, &ResolveError{Pipeline: name, Ref: reg.ref, Err: err}
	}

	r.mu.Lock()
	if reg.handler == nil {
		reg.handler = resolved
	}
	h = reg.handler
	r.mu.Unlock()
	return h, nil
}
