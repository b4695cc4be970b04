package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/host"
	"github.com/goliatone/go-uiflow/normalize"
)

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	r := Default()
	kinds := r.Kinds()
	assert.Len(t, kinds, len(builtins()))
	for _, kind := range []string{KindColumn, KindText, KindListView, KindTextField} {
		assert.True(t, r.Has(kind), kind)
	}
	assert.IsIncreasing(t, kinds)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := Default()
	b := Default()
	require.NoError(t, a.Register("chart", Passthrough))
	assert.True(t, a.Has("chart"))
	assert.False(t, b.Has("chart"))
}

func TestRegisterLastWins(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("badge", func(req BuildRequest) (*host.Node, error) {
		return &host.Node{Kind: "first"}, nil
	}))
	require.NoError(t, r.Register("badge", func(req BuildRequest) (*host.Node, error) {
		return &host.Node{Kind: "second"}, nil
	}))

	def, err := r.Resolve("badge")
	require.NoError(t, err)
	node, err := def.Build(BuildRequest{Kind: "badge"})
	require.NoError(t, err)
	assert.Equal(t, "second", node.Kind)
	assert.Equal(t, []string{"badge"}, r.Kinds())
}

func TestRegisterValidation(t *testing.T) {
	r := New()
	assert.Error(t, r.Register("", Passthrough))
	assert.Error(t, r.Register("x", nil))
	assert.Error(t, r.Register("x", Passthrough, WithPropertySchema(`{"type": 12}`)))
	assert.False(t, r.Has("x"))
}

func TestResolveUnknownKind(t *testing.T) {
	_, err := New().Resolve("hologram")
	require.Error(t, err)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeUnknownKind))
	assert.Contains(t, uiflow.ErrorMessage(err), "unsupported: hologram")
}

func TestBuildRequiredProperties(t *testing.T) {
	def, err := Default().Resolve(KindText)
	require.NoError(t, err)

	_, err = def.Build(BuildRequest{Kind: KindText, Properties: normalize.Properties{}})
	require.Error(t, err)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeBuilderFailed))

	node, err := def.Build(BuildRequest{Kind: KindText, Properties: normalize.Properties{"text": 42.0}})
	require.NoError(t, err)
	assert.Equal(t, "42", node.Properties["text"])

	_, err = def.Build(BuildRequest{Kind: KindText, Properties: normalize.Properties{"text": nil}})
	assert.True(t, uiflow.IsCode(err, uiflow.CodeBuilderFailed))

	node, err = def.Build(BuildRequest{Kind: KindText, Properties: normalize.Properties{"text": ""}})
	require.NoError(t, err, "an empty bound value is still present")
	assert.Equal(t, "", node.Properties["text"])
}

func TestBuildMaxChildren(t *testing.T) {
	def, err := Default().Resolve(KindCenter)
	require.NoError(t, err)

	_, err = def.Build(BuildRequest{Kind: KindCenter, Children: []*host.Node{{Kind: "a"}, {Kind: "b"}}})
	assert.Error(t, err)

	node, err := def.Build(BuildRequest{Kind: KindCenter, Children: []*host.Node{{Kind: "a"}}})
	require.NoError(t, err)
	assert.Len(t, node.Children, 1)
}

func TestBuildDefaults(t *testing.T) {
	def, _ := Default().Resolve(KindAlign)
	node, err := def.Build(BuildRequest{Kind: KindAlign})
	require.NoError(t, err)
	assert.Equal(t, normalize.Center, node.Properties["alignment"])
}

func TestPropertySchema(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("rating", Passthrough, WithPropertySchema(`{
		"type": "object",
		"required": ["value"],
		"properties": {"value": {"type": "number", "minimum": 0, "maximum": 5}}
	}`)))
	def, err := r.Resolve("rating")
	require.NoError(t, err)

	assert.NoError(t, def.ValidateProperties(map[string]any{"value": 3}))

	err = def.ValidateProperties(map[string]any{"value": 9.0})
	require.Error(t, err)
	assert.True(t, uiflow.IsCode(err, uiflow.CodeSchemaValidation))

	assert.Error(t, def.ValidateProperties(nil))
}

func TestListViewRendersTemplate(t *testing.T) {
	def, err := Default().Resolve(KindListView)
	require.NoError(t, err)
	assert.True(t, def.IsTemplate("itemTemplate"))

	var overlays []map[string]any
	render := func(raw any, overlay map[string]any, path string) *host.Node {
		overlays = append(overlays, overlay)
		if overlay["index"] == 1.0 {
			return nil
		}
		return &host.Node{Kind: "text", Path: path}
	}

	node, err := def.Build(BuildRequest{
		Kind: KindListView,
		Path: "$",
		Properties: normalize.Properties{
			"items":        []any{"a", "b", "c"},
			"itemTemplate": map[string]any{"kind": "text"},
			"padding":      normalize.Uniform(4),
		},
		Children: []*host.Node{{Kind: "divider"}},
		Render:   render,
	})
	require.NoError(t, err)
	require.Len(t, overlays, 3)
	assert.Equal(t, "b", overlays[1]["item"])

	require.Len(t, node.Children, 3)
	assert.Equal(t, "$.items[0]", node.Children[0].Path)
	assert.Equal(t, "$.items[2]", node.Children[1].Path)
	assert.Equal(t, "divider", node.Children[2].Kind)
	assert.Equal(t, 3, node.Properties["itemCount"])
	assert.False(t, node.Properties.Has("itemTemplate"))
}

func TestListViewRejectsNonListItems(t *testing.T) {
	def, _ := Default().Resolve(KindListView)
	_, err := def.Build(BuildRequest{
		Kind:       KindListView,
		Properties: normalize.Properties{"items": "nope", "itemTemplate": map[string]any{"kind": "text"}},
		Render:     func(any, map[string]any, string) *host.Node { return nil },
	})
	assert.True(t, uiflow.IsCode(err, uiflow.CodeBuilderFailed))
}
