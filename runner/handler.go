// Package runner executes a function with timeouts and retries.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-uiflow/logging"
)

type Handler struct {
	mu sync.Mutex

	logger        logging.Logger
	errorHandler  func(error)
	retryStrategy RetryStrategy
	retryIf       func(error) bool

	runs           int
	successfulRuns int

	maxRetries     int
	timeout        time.Duration
	attemptTimeout time.Duration
	deadline       time.Time
}

// NewHandler constructs a Handler from options, applying defaults if unset.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		logger:        logging.Normalize(nil),
		retryStrategy: NoDelayStrategy{},
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	if h.errorHandler == nil {
		h.errorHandler = func(err error) {
			h.logger.Warn("runner error: %v", err)
		}
	}
	return h
}

// Run calls fn until it succeeds, retries are exhausted, the error is not
// retryable or ctx is done. The last error from fn is returned unchanged.
func (h *Handler) Run(ctx context.Context, fn func(context.Context) error) error {
	h.mu.Lock()
	maxRetries := h.maxRetries
	strategy := h.retryStrategy
	retryIf := h.retryIf
	h.mu.Unlock()

	ctx, cancel := h.contextWithSettings(ctx)
	defer cancel()

	var err error
	for attempt := 0; ; attempt++ {
		err = h.attempt(ctx, fn)
		if err == nil || attempt >= maxRetries || ctx.Err() != nil {
			break
		}
		if retryIf != nil && !retryIf(err) {
			break
		}
		decision := DecideRetry(strategy, attempt, err)
		if !decision.ShouldRetry {
			break
		}

		h.errorHandler(fmt.Errorf("attempt %d of %d failed: %w", attempt+1, maxRetries+1, err))
		h.logger.Debug("runner retrying in %s", decision.Delay)
		if !sleep(ctx, decision.Delay) {
			break
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
	if err == nil {
		h.successfulRuns++
	}
	return err
}

// Stats returns the number of runs and how many of them succeeded.
func (h *Handler) Stats() (runs, successful int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs, h.successfulRuns
}

func (h *Handler) attempt(ctx context.Context, fn func(context.Context) error) error {
	if h.attemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, h.attemptTimeout)
	defer cancel()
	return fn(attemptCtx)
}

func (h *Handler) contextWithSettings(parent context.Context) (context.Context, context.CancelFunc) {
	switch {
	case h.timeout != 0 && !h.deadline.IsZero():
		ctx, cancelTimeout := context.WithTimeout(parent, h.timeout)
		ctxDeadline, cancelDeadline := context.WithDeadline(ctx, h.deadline)
		return ctxDeadline, func() {
			cancelDeadline()
			cancelTimeout()
		}
	case h.timeout != 0:
		return context.WithTimeout(parent, h.timeout)
	case !h.deadline.IsZero():
		return context.WithDeadline(parent, h.deadline)
	default:
		return parent, func() {}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Do runs fn through h and returns its result from the successful attempt.
func Do[R any](ctx context.Context, h *Handler, fn func(context.Context) (R, error)) (R, error) {
	var result R
	err := h.Run(ctx, func(ctx context.Context) error {
		r, err := fn(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}
