// Package handler defines the domain invocation boundary.
//
// Domain handlers are passive: they receive an isolated, deep-copied
// parameter structure and return a structural result. They hold no reference
// to tokens, the audit log, the plan, or other handlers' results, and they
// cannot call back into the orchestrator.
package handler

import (
	"context"
	"sort"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// Handler is one registered domain. Invoke receives only the frozen
// parameter copy produced by the gate pipeline; any returned error aborts the
// in-flight plan.
type Handler interface {
	// Name returns the domain name the handler is registered under.
	Name() string

	// Methods returns the method names the handler implements.
	Methods() []string

	// Invoke executes a method with isolated parameters and returns a
	// structural result. Returns ErrUnknownMethod for methods the handler
	// does not implement.
	Invoke(ctx context.Context, method string, params map[string]any) (map[string]any, error)
}

// Registry is the closed set of domain handlers. Domains are registered at
// construction and never added or removed afterwards; an unknown domain fails
// lookup rather than silently no-opping.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry from the given handlers. Duplicate domain
// names are a configuration error.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	registered := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		if _, exists := registered[h.Name()]; exists {
			return nil, apperrors.Wrapf(apperrors.ErrConflict, "duplicate domain handler %q", h.Name())
		}
		registered[h.Name()] = h
	}
	return &Registry{handlers: registered}, nil
}

// Get returns the handler for a domain. Returns ErrUnknownDomain if no
// handler is registered under that name.
func (r *Registry) Get(domain string) (Handler, error) {
	h, exists := r.handlers[domain]
	if !exists {
		return nil, apperrors.Wrapf(ErrUnknownDomain, "domain %q", domain)
	}
	return h, nil
}

// Domains returns the registered domain names in sorted order.
func (r *Registry) Domains() []string {
	domains := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		domains = append(domains, name)
	}
	sort.Strings(domains)
	return domains
}
