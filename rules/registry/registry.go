package registry

import (
	"sync"

	"rule-orchestrator/errors"
	"rule-orchestrator/rules"
)

// HandlerRegistry maintains the mapping between parameter kinds and their
// handlers. It has a two-phase lifecycle: a mutable building phase during
// application initialization, then a single Seal transition after which
// only resolution is allowed.
//
// Registration happens through explicit calls in main, never through
// runtime type scanning, so a missing or duplicated handler is a startup
// error instead of a first-request surprise.
type HandlerRegistry struct {
	mu       sync.RWMutex
	sealed   bool
	handlers map[rules.Kind]rules.Handler
}

// NewRegistry constructs a new handler registry in its building phase.
func NewRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[rules.Kind]rules.Handler),
	}
}

// Register binds a handler to its declared kind.
// It fails with DuplicateRegistrationError if the kind already has a
// handler, and with RegistrySealedError once the registry is sealed.
// Both are fatal at startup.
func (r *HandlerRegistry) Register(handler rules.Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := handler.Kind()
	if r.sealed {
		return errors.NewRegistrySealedError(kind.String())
	}
	if _, exists := r.handlers[kind]; exists {
		return errors.NewDuplicateRegistrationError(kind.String())
	}

	r.handlers[kind] = handler
	return nil
}

// Seal ends the building phase. After sealing the registry is read-only
// and safe for concurrent resolution without coordination by callers.
// Sealing an already sealed registry is a no-op.
func (r *HandlerRegistry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true
}

// Sealed reports whether the registry has left its building phase.
func (r *HandlerRegistry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sealed
}

// Resolve returns the handler registered for the given kind.
// It is a pure read and fails with HandlerNotFoundError if no handler is
// registered, which is always a configuration defect.
func (r *HandlerRegistry) Resolve(kind rules.Kind) (rules.Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[kind]
	if !ok {
		return nil, errors.NewHandlerNotFoundError(kind.String())
	}
	return h, nil
}

// Kinds returns a slice of all registered parameter kinds.
// This is useful for health checks, debugging, and API documentation.
func (r *HandlerRegistry) Kinds() []rules.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]rules.Kind, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	return kinds
}
