package session

import "github.com/goliatone/go-uiflow/executor"

type Subscription interface {
	Unsubscribe()
}

type subs struct {
	session *Session
	fn      func(executor.Trace)
}

func (s *subs) Unsubscribe() {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()
	delete(s.session.subs, s)
}

// OnSettled registers fn to receive the trace of every chain this session
// runs. fn is called from the chain's goroutine.
func (s *Session) OnSettled(fn func(executor.Trace)) Subscription {
	sub := &subs{session: s, fn: fn}
	if fn == nil {
		return sub
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (s *Session) notify(tr executor.Trace) {
	s.mu.Lock()
	fns := make([]func(executor.Trace), 0, len(s.subs))
	for sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(tr)
	}
}
