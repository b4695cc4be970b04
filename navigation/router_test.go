package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/logging"
)

func newTestRouter(opts ...Option) *Router {
	r := NewRouter(append([]Option{WithLogger(logging.Nop{})}, opts...)...)
	r.Handle("login", nil)
	r.Handle("dashboard", nil)
	r.Handle("/users/:id", nil)
	r.Handle("/users/me", nil)
	return r
}

func TestRouterNavigateAndHistory(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()

	require.NoError(t, r.Navigate(ctx, "login", false, nil))
	require.NoError(t, r.Navigate(ctx, "/users/42?tab=posts", false, map[string]any{"from": "login"}))

	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "/users/:id", cur.Pattern)
	assert.Equal(t, map[string]string{"id": "42"}, cur.Params)
	assert.Equal(t, map[string]string{"tab": "posts"}, cur.Query)
	assert.Equal(t, map[string]any{"from": "login"}, cur.Arguments)

	require.NoError(t, r.Navigate(ctx, "/users/me", false, nil))
	cur, _ = r.Current()
	assert.Equal(t, "/users/me", cur.Pattern)
	assert.Nil(t, cur.Params)
	assert.Len(t, r.History(), 3)
}

func TestRouterReplace(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()

	require.NoError(t, r.Navigate(ctx, "login", false, nil))
	require.NoError(t, r.Navigate(ctx, "dashboard", true, nil))

	history := r.History()
	require.Len(t, history, 1)
	assert.Equal(t, "dashboard", history[0].Target)

	err := r.Navigate(ctx, TargetBack, false, nil)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeNavigation))
}

func TestRouterBack(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()
	require.NoError(t, r.Navigate(ctx, "login", false, nil))
	require.NoError(t, r.Navigate(ctx, "dashboard", false, nil))

	require.NoError(t, r.Navigate(ctx, "back", false, nil))
	cur, _ := r.Current()
	assert.Equal(t, "login", cur.Target)
}

func TestRouterUnknownRoute(t *testing.T) {
	r := newTestRouter()
	err := r.Navigate(context.Background(), "settings", false, nil)
	require.Error(t, err)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeNavigation))
	assert.Equal(t, "settings", uiflow.ErrorMetadata(err)["target"])
	_, ok := r.Current()
	assert.False(t, ok)

	permissive := newTestRouter(WithPermissive(true))
	require.NoError(t, permissive.Navigate(context.Background(), "settings", false, nil))
}

func TestRouterHandlerRejects(t *testing.T) {
	r := newTestRouter()
	denied := errors.New("not signed in")
	r.Handle("admin/*", func(_ context.Context, loc Location) error {
		if loc.Params["*"] == "secret" {
			return denied
		}
		return nil
	})

	require.NoError(t, r.Navigate(context.Background(), "admin/users", false, nil))
	err := r.Navigate(context.Background(), "admin/secret", false, nil)
	assert.ErrorIs(t, err, denied)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeNavigation))
	assert.Len(t, r.History(), 1)
}

func TestRouterSubscribeAndMaxHistory(t *testing.T) {
	r := newTestRouter(WithMaxHistory(2))
	var seen []string
	unsubscribe := r.Subscribe(func(loc Location) { seen = append(seen, loc.Target) })

	ctx := context.Background()
	require.NoError(t, r.Navigate(ctx, "login", false, nil))
	require.NoError(t, r.Navigate(ctx, "dashboard", false, nil))
	unsubscribe()
	require.NoError(t, r.Navigate(ctx, "/users/1", false, nil))

	assert.Equal(t, []string{"login", "dashboard"}, seen)
	history := r.History()
	require.Len(t, history, 2)
	assert.Equal(t, "dashboard", history[0].Target)
}

func TestRouterSubscribeNil(t *testing.T) {
	r := newTestRouter()
	unsubscribe := r.Subscribe(nil)
	require.NotNil(t, unsubscribe)

	assert.NotPanics(t, func() {
		require.NoError(t, r.Navigate(context.Background(), "login", false, nil))
	})
	unsubscribe()
}
