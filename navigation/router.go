// Package navigation implements the navigation collaborator: a route table
// with parameter matching and a history stack.
package navigation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/logging"
)

// TargetBack pops the history stack instead of pushing.
const TargetBack = "back"

// Location is one entry of the history stack.
type Location struct {
	Target    string            `json:"target"`
	Pattern   string            `json:"pattern,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Query     map[string]string `json:"query,omitempty"`
	Arguments map[string]any    `json:"arguments,omitempty"`
}

// Handler is called when a route is entered. An error aborts the navigation.
type Handler func(ctx context.Context, loc Location) error

type Router struct {
	mu         sync.RWMutex
	routes     map[string]Handler
	sorted     []string
	history    []Location
	maxHistory int
	permissive bool
	listeners  map[int]func(Location)
	nextID     int
	logger     logging.Logger
}

type Option func(*Router)

// WithPermissive accepts any target, matched route or not.
func WithPermissive(permissive bool) Option {
	return func(r *Router) {
		r.permissive = permissive
	}
}

// WithMaxHistory caps the history stack; the oldest entries are dropped.
func WithMaxHistory(max int) Option {
	return func(r *Router) {
		r.maxHistory = max
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

func NewRouter(opts ...Option) *Router {
	r := &Router{
		routes:     make(map[string]Handler),
		maxHistory: 50,
		listeners:  make(map[int]func(Location)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.Normalize(r.logger)
	return r
}

// Handle registers pattern. A nil handler only marks the route as known.
func (r *Router) Handle(pattern string, h Handler) {
	pattern = strings.TrimSpace(pattern)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[pattern] = h
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sortPatterns(keys)
	r.sorted = keys
}

// Subscribe registers fn to be called after every successful navigation.
// The returned function removes the subscription. A nil fn is ignored.
func (r *Router) Subscribe(fn func(Location)) func() {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Navigate implements the executor navigation contract.
func (r *Router) Navigate(ctx context.Context, target string, replace bool, arguments map[string]any) error {
	target = strings.TrimSpace(target)
	if target == TargetBack {
		return r.Back()
	}

	loc, h, err := r.resolve(target)
	if err != nil {
		return err
	}
	loc.Arguments = arguments

	if h != nil {
		if err := h(ctx, loc); err != nil {
			return uiflow.NewError(uiflow.ErrNavigation, "route "+loc.Pattern+" rejected navigation", err, map[string]any{"target": target})
		}
	}

	r.mu.Lock()
	if replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = loc
	} else {
		r.history = append(r.history, loc)
		if r.maxHistory > 0 && len(r.history) > r.maxHistory {
			r.history = r.history[len(r.history)-r.maxHistory:]
		}
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	r.logger.Debug("navigated to %s (replace=%t)", target, replace)
	for _, fn := range listeners {
		fn(loc)
	}
	return nil
}

// Back pops the current location.
func (r *Router) Back() error {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return uiflow.NewError(uiflow.ErrNavigation, "no previous location", nil, map[string]any{"target": TargetBack})
	}
	r.history = r.history[:len(r.history)-1]
	loc := r.history[len(r.history)-1]
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
	return nil
}

// Current returns the top of the history stack.
func (r *Router) Current() (Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.history) == 0 {
		return Location{}, false
	}
	return r.history[len(r.history)-1], true
}

// History returns a copy of the stack, oldest first.
func (r *Router) History() []Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Location(nil), r.history...)
}

func (r *Router) resolve(target string) (Location, Handler, error) {
	path, rawQuery, _ := strings.Cut(target, "?")
	loc := Location{Target: target, Query: parseQuery(rawQuery)}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.routes[path]; ok {
		loc.Pattern = path
		return loc, h, nil
	}
	for _, pattern := range r.sorted {
		if params, ok := Match(pattern, path); ok {
			loc.Pattern = pattern
			if len(params) > 0 {
				loc.Params = params
			}
			return loc, r.routes[pattern], nil
		}
	}
	if r.permissive {
		return loc, nil, nil
	}
	return Location{}, nil, uiflow.NewError(uiflow.ErrNavigation, fmt.Sprintf("unknown route: %s", target), nil, map[string]any{"target": target})
}

func (r *Router) snapshotListeners() []func(Location) {
	out := make([]func(Location), 0, len(r.listeners))
	for i := 0; i < r.nextID; i++ {
		if fn, ok := r.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func parseQuery(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil || len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
