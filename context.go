package uiflow

import (
	"sort"
	"sync"
)

// Scope names, in lookup precedence order.
const (
	ScopeFields  = "fields"
	ScopeState   = "state"
	ScopeSession = "session"
)

// Scope resolves dotted paths. Implementations must be safe to read from
// several goroutines.
type Scope interface {
	Lookup(path string) (any, bool)
}

// StateObserver is notified after state keys change. A returned error marks
// the SetState effect as failed; the update itself is already applied.
type StateObserver func(changed []string, state map[string]any) error

// ExecutionContext is the mutable binding environment shared by rendering and
// action execution. Writes are last-write-wins; no cross-chain arbitration.
type ExecutionContext struct {
	mu        sync.RWMutex
	fields    map[string]any
	state     map[string]any
	session   map[string]any
	observers []StateObserver
}

// ContextOption configures a new ExecutionContext.
type ContextOption func(*ExecutionContext)

func WithFields(fields map[string]any) ContextOption {
	return func(c *ExecutionContext) {
		c.fields = CopyMap(fields)
	}
}

func WithState(state map[string]any) ContextOption {
	return func(c *ExecutionContext) {
		c.state = CopyMap(state)
	}
}

func WithSession(session map[string]any) ContextOption {
	return func(c *ExecutionContext) {
		c.session = CopyMap(session)
	}
}

func WithStateObserver(obs StateObserver) ContextOption {
	return func(c *ExecutionContext) {
		if obs != nil {
			c.observers = append(c.observers, obs)
		}
	}
}

func NewExecutionContext(opts ...ContextOption) *ExecutionContext {
	c := &ExecutionContext{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.fields == nil {
		c.fields = make(map[string]any)
	}
	if c.state == nil {
		c.state = make(map[string]any)
	}
	if c.session == nil {
		c.session = make(map[string]any)
	}
	return c
}

// Observe registers a state observer.
func (c *ExecutionContext) Observe(obs StateObserver) {
	if obs == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// SetField records the current value of an input element.
func (c *ExecutionContext) SetField(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[id] = value
}

func (c *ExecutionContext) Field(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.fields[id]
	return v, ok
}

func (c *ExecutionContext) SetSession(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session[key] = value
}

func (c *ExecutionContext) State(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.state[key]
	return v, ok
}

// ApplyState sets every non-nil update and deletes every key whose update is
// nil, then notifies observers with the sorted list of touched keys.
func (c *ExecutionContext) ApplyState(updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	c.mu.Lock()
	changed := make([]string, 0, len(updates))
	for k, v := range updates {
		if v == nil {
			delete(c.state, k)
		} else {
			c.state[k] = DeepCopy(v)
		}
		changed = append(changed, k)
	}
	sort.Strings(changed)
	observers := append([]StateObserver(nil), c.observers...)
	view := CopyMap(c.state)
	c.mu.Unlock()

	for _, obs := range observers {
		if err := obs(changed, view); err != nil {
			return NewError(ErrStateUpdate, "state observer rejected update", err, map[string]any{
				"keys": changed,
			})
		}
	}
	return nil
}

// Snapshot returns a deep copy of all three scopes.
func (c *ExecutionContext) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Fields:  CopyMap(c.fields),
		State:   CopyMap(c.state),
		Session: CopyMap(c.session),
	}
}

// Lookup resolves against the live scopes and returns a copy of the value.
func (c *ExecutionContext) Lookup(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := Snapshot{Fields: c.fields, State: c.state, Session: c.session}.Lookup(path)
	if !ok {
		return nil, false
	}
	return DeepCopy(v), true
}

// Snapshot is an immutable, point-in-time view of an ExecutionContext.
type Snapshot struct {
	Fields  map[string]any `json:"fields"`
	State   map[string]any `json:"state"`
	Session map[string]any `json:"session"`
}

// Lookup resolves path against fields, then state, then session; the first
// scope holding the full path wins. When nothing matches and the first segment
// names a scope ("state.user.id"), the remainder is resolved in that scope.
func (s Snapshot) Lookup(path string) (any, bool) {
	segments, ok := SplitPath(path)
	if !ok {
		return nil, false
	}
	for _, scope := range []map[string]any{s.Fields, s.State, s.Session} {
		if v, found := LookupPath(scope, segments); found {
			return v, true
		}
	}
	if len(segments) > 1 {
		if scope, named := s.scope(segments[0]); named {
			return LookupPath(scope, segments[1:])
		}
	}
	return nil, false
}

func (s Snapshot) scope(name string) (map[string]any, bool) {
	switch name {
	case ScopeFields:
		return s.Fields, true
	case ScopeState:
		return s.State, true
	case ScopeSession:
		return s.Session, true
	}
	return nil, false
}

// Overlay layers values on top of a base scope; values shadow the base.
type Overlay struct {
	Base   Scope
	Values map[string]any
}

func (o Overlay) Lookup(path string) (any, bool) {
	if segments, ok := SplitPath(path); ok && len(o.Values) > 0 {
		if v, found := LookupPath(o.Values, segments); found {
			return v, true
		}
	}
	if o.Base == nil {
		return nil, false
	}
	return o.Base.Lookup(path)
}

// MapScope resolves paths against a single map.
type MapScope map[string]any

func (m MapScope) Lookup(path string) (any, bool) {
	segments, ok := SplitPath(path)
	if !ok {
		return nil, false
	}
	return LookupPath(map[string]any(m), segments)
}

// Flatten exposes scope as named variables: "fields", "state" and "session"
// are always present, overlay and MapScope values are added at top level.
func Flatten(scope Scope) map[string]any {
	out := map[string]any{
		ScopeFields:  map[string]any{},
		ScopeState:   map[string]any{},
		ScopeSession: map[string]any{},
	}
	flattenInto(out, scope)
	return out
}

func flattenInto(out map[string]any, scope Scope) {
	switch s := scope.(type) {
	case *ExecutionContext:
		flattenInto(out, s.Snapshot())
	case Snapshot:
		for name, m := range map[string]map[string]any{ScopeFields: s.Fields, ScopeState: s.State, ScopeSession: s.Session} {
			if m != nil {
				out[name] = m
			}
		}
	case Overlay:
		if s.Base != nil {
			flattenInto(out, s.Base)
		}
		for k, v := range s.Values {
			out[k] = v
		}
	case MapScope:
		for k, v := range s {
			out[k] = v
		}
	}
}
