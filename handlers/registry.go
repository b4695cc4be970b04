// Package handlers stores the named host handlers invoked by custom actions.
package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/goliatone/go-errors"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/logging"
)

const CodeHandlerConflict = "HANDLER_CONFLICT"

// ErrHandlerConflict is returned when a name is registered twice.
var ErrHandlerConflict = apperrors.New("handler already registered", apperrors.CategoryConflict).
	WithTextCode(CodeHandlerConflict)

// Handler receives resolved parameters. A map result is exposed to the rest
// of the chain under the response state key.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Effect adapts a handler without a result.
func Effect(fn func(ctx context.Context, params map[string]any) error) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		return nil, fn(ctx, params)
	}
}

// Registry stores handlers by namespaced name. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]Handler
	namespacer func(string, string) string
	logger     logging.Logger
}

type Option func(*Registry)

// WithNamespacer customizes how handler names are namespaced.
func WithNamespacer(fn func(string, string) string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.namespacer = fn
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handlers:   make(map[string]Handler),
		namespacer: DefaultNamespace,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.Normalize(r.logger)
	return r
}

// Register adds a handler by name.
func (r *Registry) Register(name string, h Handler) error {
	return r.RegisterNamespaced("", name, h)
}

// RegisterNamespaced adds a handler under namespace+name.
func (r *Registry) RegisterNamespaced(namespace, name string, h Handler) error {
	key := r.namespacer(namespace, name)
	if key == "" || h == nil {
		return uiflow.NewError(uiflow.ErrHandlerFailed, "handler name and function are required", nil, map[string]any{"handler": key})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[key]; exists {
		return uiflow.NewError(ErrHandlerConflict, fmt.Sprintf("handler %s already registered", key), nil, map[string]any{"handler": key})
	}
	r.handlers[key] = h
	return nil
}

// Lookup retrieves a handler by its full name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// IDs returns sorted handler names.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.handlers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Invoke calls the named handler. A missing name is HANDLER_NOT_FOUND; a
// panic is recovered as HANDLER_FAILED.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return nil, uiflow.NewError(uiflow.ErrHandlerNotFound, "handler not found: "+name, nil, map[string]any{"handler": name})
	}

	var result any
	err := uiflow.Recover(uiflow.ErrHandlerFailed, "handler "+name, func() error {
		var callErr error
		result, callErr = h(ctx, params)
		return callErr
	})
	if err != nil {
		r.logger.Debug("handler %s failed: %v", name, err)
		return nil, err
	}
	return result, nil
}
