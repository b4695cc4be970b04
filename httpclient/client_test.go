package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/executor"
	"github.com/goliatone/go-uiflow/logging"
	"github.com/goliatone/go-uiflow/runner"
)

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(srv.URL + "/"),
		WithLogger(logging.Nop{}),
		WithRetryStrategy(runner.NoDelayStrategy{}),
	}
	return New(append(base, opts...)...)
}

func TestClientPostJSON(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		gotHeaders = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "r-1")
		_, _ = w.Write([]byte(`{"token": "abc", "user": {"id": 1}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, WithHeaders(map[string]string{"X-App": "uiflow", "Authorization": "default"}))
	resp, err := c.Do(context.Background(), executor.Request{
		Method:  "post",
		URL:     "/api/auth/login",
		Query:   map[string]any{"remember": true, "scope": []any{"a", "b"}},
		Headers: map[string]string{"Authorization": "Bearer t"},
		Body:    map[string]any{"email": "a@b.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"email": "a@b.com"}, gotBody)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "uiflow", gotHeaders.Get("X-App"))
	assert.Equal(t, "Bearer t", gotHeaders.Get("Authorization"))
	assert.Equal(t, "remember=true&scope=a&scope=b", gotQuery)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "r-1", resp.Headers["X-Request-Id"])
	assert.Equal(t, map[string]any{"token": "abc", "user": map[string]any{"id": 1.0}}, resp.Data)
}

func TestClientNon2xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "bad credentials"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv, WithMaxRetries(3)).Do(context.Background(), executor.Request{URL: "/login"})
	require.Error(t, err)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeNetwork))
	assert.Equal(t, 401, StatusCode(err))
	require.NotNil(t, resp)
	assert.Equal(t, map[string]any{"message": "bad credentials"}, resp.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx answers are not retried")
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv, WithMaxRetries(2)).Do(context.Background(), executor.Request{URL: "/health"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Data)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	resp, err = newTestClient(srv, WithMaxRetries(0)).Do(context.Background(), executor.Request{URL: "/health"})
	require.Error(t, err)
	assert.Equal(t, 503, resp.StatusCode)
	assert.Nil(t, resp.Data)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestClient(srv).Do(context.Background(), executor.Request{URL: "/slow", Timeout: 30 * time.Millisecond})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeNetwork))
	assert.Contains(t, uiflow.ErrorMessage(err), "timed out")
}

func TestClientParentCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := newTestClient(srv, WithMaxRetries(3)).Do(ctx, executor.Request{URL: "/hang"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClientRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv, WithRateLimit(20, 1))
	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := c.Do(context.Background(), executor.Request{URL: "/ping"})
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestResolveURL(t *testing.T) {
	c := New(WithBaseURL("https://api.example.com/v1/"))

	got, err := c.resolveURL("users/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/users/1", got)

	got, err = c.resolveURL("https://other.example.com/x?a=1", map[string]any{"b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/x?a=1&b=2", got)
}
