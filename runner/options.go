package runner

import (
	"time"

	"github.com/goliatone/go-uiflow/logging"
)

type Option func(*Handler)

// WithTimeout bounds a whole Run, retries and backoff included.
func WithTimeout(t time.Duration) Option {
	return func(h *Handler) {
		h.timeout = t
	}
}

// WithAttemptTimeout bounds each attempt separately.
func WithAttemptTimeout(t time.Duration) Option {
	return func(h *Handler) {
		h.attemptTimeout = t
	}
}

func WithDeadline(d time.Time) Option {
	return func(h *Handler) {
		h.deadline = d
	}
}

func WithMaxRetries(max int) Option {
	return func(h *Handler) {
		if max < 0 {
			max = 0
		}
		h.maxRetries = max
	}
}

func WithErrorHandler(fn func(error)) Option {
	return func(h *Handler) {
		if fn == nil {
			fn = func(error) {}
		}
		h.errorHandler = fn
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *Handler) {
		h.logger = logging.Normalize(l)
	}
}

// WithRetryStrategy lets you define a custom retry/backoff approach.
func WithRetryStrategy(s RetryStrategy) Option {
	return func(h *Handler) {
		h.retryStrategy = s
	}
}

// WithRetryIf limits retries to errors accepted by fn.
func WithRetryIf(fn func(error) bool) Option {
	return func(h *Handler) {
		h.retryIf = fn
	}
}
