package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
)

func TestInterpolateEmbedded(t *testing.T) {
	ctx := uiflow.NewExecutionContext(uiflow.WithFields(map[string]any{"name": "World"}))

	got, diags := Resolve("Hello ${name}", ctx, "$.text")
	assert.Empty(t, diags)
	assert.Equal(t, "Hello World", got)
}

func TestWholeTokenKeepsType(t *testing.T) {
	ctx := uiflow.NewExecutionContext(uiflow.WithState(map[string]any{
		"response": map[string]any{"data": map[string]any{"id": 1.0}},
		"count":    3.0,
		"ok":       true,
	}))

	got, diags := Resolve("${response.data}", ctx, "$.body")
	assert.Empty(t, diags)
	assert.Equal(t, map[string]any{"id": 1.0}, got)

	got, _ = Resolve("${count}", ctx, "")
	assert.Equal(t, 3.0, got)

	got, _ = Resolve("${ ok }", ctx, "")
	assert.Equal(t, true, got)

	got, _ = Resolve("count=${count}", ctx, "")
	assert.Equal(t, "count=3", got)
}

func TestMissingVariable(t *testing.T) {
	ctx := uiflow.NewExecutionContext()

	got, diags := Resolve("${missing.path}", ctx, "$.body.id")
	assert.Equal(t, "", got)
	require.Len(t, diags, 1)
	assert.Equal(t, uiflow.CodeVariableResolution, diags[0].Code)
	assert.Equal(t, "$.body.id", diags[0].Path)
	assert.Contains(t, diags[0].Message, "missing.path")

	got, diags = Resolve("a ${x} b ${y}", ctx, "p")
	assert.Equal(t, "a  b ", got)
	assert.Len(t, diags, 2)
}

func TestInvalidTokenPath(t *testing.T) {
	got, diags := Resolve("${a..b}", uiflow.MapScope{}, "p")
	assert.Equal(t, "", got)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "invalid")
}

func TestResolveNestedStructures(t *testing.T) {
	ctx := uiflow.NewExecutionContext(
		uiflow.WithFields(map[string]any{"email_input": "a@b.com"}),
		uiflow.WithSession(map[string]any{"token": "t0k"}),
	)
	in := map[string]any{
		"email": "${email_input}",
		"meta":  []any{"${token}", 4.0, map[string]any{"nested": "x-${token}"}},
		"plain": "untouched",
	}

	got, diags := ResolveMap(in, ctx, "$.body")
	assert.Empty(t, diags)
	assert.Equal(t, map[string]any{
		"email": "a@b.com",
		"meta":  []any{"t0k", 4.0, map[string]any{"nested": "x-t0k"}},
		"plain": "untouched",
	}, got)
	assert.Equal(t, "${email_input}", in["email"])
}

func TestScopePrecedence(t *testing.T) {
	ctx := uiflow.NewExecutionContext(
		uiflow.WithFields(map[string]any{"id": "field"}),
		uiflow.WithState(map[string]any{"id": "state"}),
		uiflow.WithSession(map[string]any{"id": "session"}),
	)
	got, _ := Resolve("${id}", ctx, "")
	assert.Equal(t, "field", got)

	got, _ = Resolve("${session.id}", ctx, "")
	assert.Equal(t, "session", got)
}

func TestResolveStrings(t *testing.T) {
	scope := uiflow.MapScope{"token": "abc"}
	got, diags := ResolveStrings(map[string]string{"Authorization": "Bearer ${token}"}, scope, "$.headers")
	assert.Empty(t, diags)
	assert.Equal(t, "Bearer abc", got["Authorization"])
}

func TestHasTokensAndWholeToken(t *testing.T) {
	assert.True(t, HasTokens(map[string]any{"a": []any{"${x}"}}))
	assert.False(t, HasTokens(map[string]any{"a": "$x"}))

	name, ok := WholeToken("${user.id}")
	assert.True(t, ok)
	assert.Equal(t, "user.id", name)

	_, ok = WholeToken(" ${user.id}")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b.c"}, Tokens("${a}-${ b.c }"))
}
