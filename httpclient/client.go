// Package httpclient is the HTTP collaborator used by apiCall actions.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/executor"
	"github.com/goliatone/go-uiflow/logging"
	"github.com/goliatone/go-uiflow/runner"
)

// DefaultTimeout applies when neither the request nor the client sets one.
const DefaultTimeout = 30 * time.Second

// DefaultRetryStrategy backs off between retried attempts.
var DefaultRetryStrategy = runner.ExponentialBackoffStrategy{
	Base:   100 * time.Millisecond,
	Factor: 2,
	Max:    2 * time.Second,
}

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

type Client struct {
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	headers    map[string]string
	limiter    *rate.Limiter
	maxRetries int
	strategy   runner.RetryStrategy
	logger     logging.Logger
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-attempt timeout used when a request has none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeaders sets headers sent with every request. Request headers win.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithRateLimit allows rps requests per second with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxRetries retries transport failures and 5xx answers.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func WithRetryStrategy(s runner.RetryStrategy) Option {
	return func(c *Client) {
		c.strategy = s
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{},
		timeout:  DefaultTimeout,
		headers:  map[string]string{},
		strategy: DefaultRetryStrategy,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = logging.Normalize(c.logger)
	return c
}

// Do sends req. When the server answers with a non-2xx status, both the
// decoded response and a NETWORK error are returned.
func (c *Client) Do(ctx context.Context, req executor.Request) (*executor.Response, error) {
	target, err := c.resolveURL(req.URL, req.Query)
	if err != nil {
		return nil, uiflow.NewError(uiflow.ErrNetwork, "invalid endpoint "+req.URL, err, map[string]any{"endpoint": req.URL})
	}
	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, uiflow.NewError(uiflow.ErrNetwork, "request body does not encode", err, map[string]any{"endpoint": target})
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	h := runner.NewHandler(
		runner.WithMaxRetries(c.maxRetries),
		runner.WithAttemptTimeout(timeout),
		runner.WithRetryStrategy(c.strategy),
		runner.WithRetryIf(retryable),
		runner.WithLogger(c.logger),
		runner.WithErrorHandler(func(err error) {
			c.logger.Debug("%s %s retrying: %v", method, target, err)
		}),
	)

	var last *executor.Response
	err = h.Run(ctx, func(attemptCtx context.Context) error {
		resp, err := c.send(ctx, attemptCtx, method, target, payload, req.Headers)
		last = resp
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return last, ctx.Err()
		}
		return last, err
	}
	return last, nil
}

func (c *Client) send(ctx, attemptCtx context.Context, method, target string, payload []byte, headers map[string]string) (*executor.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, uiflow.NewError(uiflow.ErrNetwork, "failed to create request", err, map[string]any{"endpoint": target})
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := method + " " + target + " failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = method + " " + target + " timed out"
		}
		return nil, uiflow.NewError(uiflow.ErrNetwork, msg, err, map[string]any{"endpoint": target})
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, uiflow.NewError(uiflow.ErrNetwork, "failed to read response", err, map[string]any{"endpoint": target})
	}

	resp := &executor.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    flattenHeaders(httpResp.Header),
		Data:       decodeBody(raw, httpResp.Header.Get("Content-Type")),
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, uiflow.NewError(uiflow.ErrNetwork,
			fmt.Sprintf("%s %s returned status %d", method, target, httpResp.StatusCode),
			&StatusError{StatusCode: httpResp.StatusCode},
			map[string]any{"endpoint": target, "status": httpResp.StatusCode})
	}
	return resp, nil
}

// StatusError is the source of NETWORK errors caused by a non-2xx answer.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if status := StatusCode(err); status != 0 {
		return status >= 500
	}
	return true
}

func (c *Client) resolveURL(endpoint string, query map[string]any) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() && c.baseURL != "" {
		u, err = url.Parse(c.baseURL + "/" + strings.TrimLeft(endpoint, "/"))
		if err != nil {
			return "", err
		}
	}
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			if items, ok := uiflow.AsSlice(v); ok {
				for _, item := range items {
					values.Add(k, uiflow.Stringify(item))
				}
				continue
			}
			values.Set(k, uiflow.Stringify(v))
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func decodeBody(raw []byte, contentType string) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if strings.Contains(contentType, "json") || trimmed[0] == '{' || trimmed[0] == '[' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
