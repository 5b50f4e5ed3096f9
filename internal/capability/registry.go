package capability

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the operation schema and the handlers bound to it.
// Descriptors are immutable after construction; handler binding happens
// during module provisioning, before any request is served.
// It is instance-based (not global) for better testability.
type Registry struct {
	mu       sync.RWMutex
	ops      map[string]Operation
	handlers map[string]Handler
}

// NewRegistry builds a registry from the given descriptors. Names must be
// unique and every required parameter must be default-free.
func NewRegistry(ops []Operation) (*Registry, error) {
	r := &Registry{
		ops:      make(map[string]Operation, len(ops)),
		handlers: make(map[string]Handler),
	}
	for _, op := range ops {
		name := strings.TrimSpace(op.Name)
		if name == "" {
			return nil, ErrEmptyOperationName
		}
		if _, exists := r.ops[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOperation, name)
		}
		for _, p := range op.Params {
			if p.Required && p.Default != nil {
				return nil, fmt.Errorf("%w: %s.%s is required but has default %v",
					ErrBadParamSpec, name, p.Name, p.Default)
			}
		}
		r.ops[name] = op
	}
	return r, nil
}

// Lookup returns the operation with the given name, or ErrUnknownOperation.
func (r *Registry) Lookup(name string) (Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op, nil
}

// Operations returns all descriptors sorted by name, for prompt rendering
// and the operations endpoint.
func (r *Registry) Operations() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b Operation) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return ops
}

// Names returns all operation names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of declared operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

// Bind attaches a handler to the named operation. Rebinding a name replaces
// the previous handler, which lets a reloaded backend rebind in place.
func (r *Registry) Bind(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrNotBound, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	r.handlers[name] = h
	return nil
}

// Handler returns the handler bound to the named operation.
func (r *Registry) Handler(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.ops[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, name)
	}
	return h, nil
}

// Bound returns the names of all operations that currently have a handler.
func (r *Registry) Bound() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
