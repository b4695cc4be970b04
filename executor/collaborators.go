package executor

import (
	"context"
	"time"
)

// Navigator moves the host to another screen.
type Navigator interface {
	Navigate(ctx context.Context, target string, replace bool, arguments map[string]any) error
}

// Request is a fully resolved HTTP call.
type Request struct {
	Method  string
	URL     string
	Query   map[string]any
	Headers map[string]string
	Body    any
	// Timeout of zero leaves the client default in place.
	Timeout time.Duration
}

// Response is what the server answered. Data holds the decoded body.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Data       any
}

// HTTPClient performs requests. Implementations return a non-nil Response
// together with an error when the server answered with a failure status.
type HTTPClient interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HandlerInvoker calls named host handlers.
type HandlerInvoker interface {
	Invoke(ctx context.Context, name string, parameters map[string]any) (any, error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string, replace bool, arguments map[string]any) error

func (f NavigatorFunc) Navigate(ctx context.Context, target string, replace bool, arguments map[string]any) error {
	return f(ctx, target, replace, arguments)
}

// HTTPClientFunc adapts a function to HTTPClient.
type HTTPClientFunc func(ctx context.Context, req Request) (*Response, error)

func (f HTTPClientFunc) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
