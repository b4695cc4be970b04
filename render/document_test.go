package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
)

func TestParseDocument(t *testing.T) {
	t.Run("json document", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"id": "login", "version": "1.2.0", "root": {"kind": "column"}}`))
		require.NoError(t, err)
		assert.Equal(t, "login", doc.ID)
		assert.Equal(t, "1.2.0", doc.Version)
		assert.Equal(t, "column", doc.Root["kind"])
	})

	t.Run("yaml document", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`
id: profile
version: 1
root:
  kind: text
  properties:
    text: hello
    width: 120
`))
		require.NoError(t, err)
		assert.Equal(t, "profile", doc.ID)
		assert.Equal(t, "1", doc.Version)
		props, ok := uiflow.AsMap(doc.Root["properties"])
		require.True(t, ok)
		assert.Equal(t, 120.0, props["width"])
	})

	t.Run("bare node", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"kind": "divider"}`))
		require.NoError(t, err)
		assert.Empty(t, doc.Version)
		assert.Equal(t, "divider", doc.Root["kind"])
	})

	for name, src := range map[string]string{
		"empty":       "  ",
		"broken json": `{"root": `,
		"scalar":      "42",
		"no root":     `{"id": "x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(src))
			require.Error(t, err)
			assert.True(t, uiflow.IsCode(err, uiflow.CodeSchemaValidation))
		})
	}
}

func TestRenderDocumentVersions(t *testing.T) {
	e := newTestEngine(t)
	root := map[string]any{"kind": "divider"}

	res := e.RenderDocument(Document{ID: "screen", Version: "1.4.2", Root: root}, nil)
	assert.Equal(t, "screen", res.ID)
	assert.Empty(t, res.Diagnostics)

	res = e.RenderDocument(Document{Version: "2.0.0", Root: root}, nil)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, uiflow.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Contains(t, res.Diagnostics[0].Message, "does not satisfy")
	assert.False(t, res.Root.IsFallback())

	res = e.RenderDocument(Document{Version: "banana", Root: root}, nil)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "not semver")

	wide := newTestEngine(t, WithSupportedVersions(">=1.0.0"))
	res = wide.RenderDocument(Document{Version: "2.0.0", Root: root}, nil)
	assert.Empty(t, res.Diagnostics)

	_, err := New(nil, WithSupportedVersions("not a constraint"))
	assert.Error(t, err)
}
