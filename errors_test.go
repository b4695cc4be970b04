package uiflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorClonesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrNetwork, "GET /users failed", cause, map[string]any{"endpoint": "/users"})

	assert.Equal(t, CodeNetwork, ErrorCode(err))
	assert.True(t, IsCode(err, CodeNetwork))
	assert.Equal(t, "GET /users failed: connection refused", ErrorMessage(err))
	assert.Equal(t, "/users", ErrorMetadata(err)["endpoint"])
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "network request failed", ErrNetwork.Message, "sentinel must not be mutated")
	assert.Empty(t, ErrNetwork.Metadata)
}

func TestErrorHelpersOnPlainErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.Equal(t, "", ErrorCode(plain))
	assert.False(t, IsCode(nil, CodeNetwork))
	assert.Equal(t, "plain", ErrorMessage(plain))
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Nil(t, ErrorMetadata(plain))

	wrapped := fmt.Errorf("outer: %w", NewError(ErrNavigation, "unknown route: /x", nil, nil))
	assert.Equal(t, CodeNavigation, ErrorCode(wrapped))
	assert.Equal(t, "unknown route: /x", ErrorMessage(wrapped))
}

func TestDiagnosticFromError(t *testing.T) {
	d := DiagnosticFromError("$.children[0]", SeverityError, NewError(ErrUnknownKind, "unknown kind: fancy", nil, nil))
	assert.Equal(t, Diagnostic{
		Path:     "$.children[0]",
		Severity: SeverityError,
		Code:     CodeUnknownKind,
		Message:  "unknown kind: fancy",
	}, d)

	d = DiagnosticFromError("$", SeverityWarning, errors.New("odd"))
	assert.Equal(t, CodeBuilderFailed, d.Code)
}

func TestDiagnosticsCollector(t *testing.T) {
	var diags Diagnostics
	diags.AddError("$", SeverityWarning, nil)
	diags.AddError("$.a", SeverityWarning, NewError(ErrVariableResolution, "missing x", nil, nil))
	diags.Add(Diagnostic{Path: "$.b", Severity: SeverityInfo, Code: "NOTE"})

	list := diags.List()
	require.Len(t, list, 2)
	assert.Equal(t, 2, diags.Len())
	assert.True(t, HasCode(list, CodeVariableResolution))
	assert.False(t, HasCode(list, CodeNetwork))

	var nilDiags *Diagnostics
	assert.Nil(t, nilDiags.List())
	assert.Zero(t, nilDiags.Len())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "$.children", JoinPath("$", "children"))
	assert.Equal(t, "$.children[2]", IndexPath(JoinPath("$", "children"), 2))
	assert.Equal(t, "$[1]", JoinPath("$", "[1]"))
	assert.Equal(t, "key", JoinPath("", "key"))
	assert.Equal(t, "$", JoinPath("$", ""))
}

func TestTruthyAndCoercion(t *testing.T) {
	truthy := []any{true, "yes", 1.0, -2, map[string]any{"a": 1}, []any{0}, struct{}{}}
	falsy := []any{nil, false, "", "false", "0", " ", 0.0, map[string]any{}, []any{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}

	f, ok := ToFloat(" 2.5 ")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	_, ok = ToFloat("NaN")
	assert.False(t, ok)

	b, ok := ToBool("TRUE")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = ToBool("yes")
	assert.False(t, ok)
}
