// Package session ties a render engine and an action executor to one screen.
//
// A Session owns the screen's ExecutionContext and a cancellable context.
// Triggered chains run asynchronously; Close cancels every chain still in
// flight and waits until all of them settled.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/executor"
	"github.com/goliatone/go-uiflow/host"
	"github.com/goliatone/go-uiflow/logging"
	"github.com/goliatone/go-uiflow/render"
)

type Session struct {
	id       string
	engine   *render.Engine
	executor *executor.Executor
	ec       *uiflow.ExecutionContext
	logger   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	subs     map[*subs]struct{}
}

type Option func(*Session)

// WithExecutionContext replaces the empty context a session starts with.
func WithExecutionContext(ec *uiflow.ExecutionContext) Option {
	return func(s *Session) {
		if ec != nil {
			s.ec = ec
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a session bound to parent. Cancelling parent has the same
// effect on in-flight chains as Close.
func New(parent context.Context, engine *render.Engine, exec *executor.Executor, opts ...Option) *Session {
	if parent == nil {
		parent = context.Background()
	}
	s := &Session{
		id:       uuid.NewString(),
		engine:   engine,
		executor: exec,
		subs:     make(map[*subs]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.ec == nil {
		s.ec = uiflow.NewExecutionContext()
	}
	if s.executor == nil {
		s.executor = executor.New(executor.WithLogger(s.logger))
	}
	s.logger = logging.WithFields(logging.Normalize(s.logger), map[string]any{logging.FieldSessionID: s.id})
	s.ctx, s.cancel = context.WithCancel(parent)
	return s
}

func (s *Session) ID() string { return s.id }

// Context returns the execution context actions of this session read and
// mutate.
func (s *Session) Context() *uiflow.ExecutionContext { return s.ec }

// Render renders raw against a snapshot of the session context.
func (s *Session) Render(raw any) render.Result {
	return s.engine.Render(raw, s.ec.Snapshot())
}

// RenderDocument renders a versioned screen document against the session
// context.
func (s *Session) RenderDocument(doc render.Document) render.Result {
	return s.engine.RenderDocument(doc, s.ec.Snapshot())
}

// Trigger dispatches the action bound to event on node. It reports false when
// the node has no such event or the session is closed. The returned channel
// receives the trace once the chain settled.
func (s *Session) Trigger(node *host.Node, event string) (<-chan executor.Trace, bool) {
	a, ok := node.Event(event)
	if !ok {
		s.logger.Debug("no action bound to %s", event)
		return nil, false
	}
	return s.Dispatch(a)
}

// Dispatch runs a on its own goroutine against the session context.
func (s *Session) Dispatch(a action.Action) (<-chan executor.Trace, bool) {
	if a == nil {
		return nil, false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("dispatch on closed session ignored")
		return nil, false
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	out := make(chan executor.Trace, 1)
	go func() {
		defer s.inflight.Done()
		defer close(out)
		tr := s.executor.Execute(s.ctx, a, s.ec)
		s.notify(tr)
		out <- tr
	}()
	return out, true
}

// Run executes a and blocks until its chain settled.
func (s *Session) Run(a action.Action) (executor.Trace, bool) {
	ch, ok := s.Dispatch(a)
	if !ok {
		return executor.Trace{}, false
	}
	return <-ch, true
}

// Close cancels in-flight chains and waits for them. Pending continuations
// are discarded without running onError. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
	if !already {
		s.logger.Debug("session closed")
	}
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
