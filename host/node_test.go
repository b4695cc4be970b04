package host

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/normalize"
)

func sampleTree() *Node {
	return &Node{
		Kind: "column",
		Path: "$",
		Children: []*Node{
			{Kind: "textField", ID: "email", Path: "$.children[0]"},
			{
				Kind: "row",
				Path: "$.children[1]",
				Children: []*Node{
					{Kind: "button", ID: "submit", Path: "$.children[1].children[0]", Events: map[string]action.Action{
						"press": action.Navigate{Target: "/home"},
						"hold":  action.SetState{Updates: map[string]any{"held": true}},
					}},
				},
			},
		},
	}
}

func TestNodeWalkAndFind(t *testing.T) {
	root := sampleTree()

	var paths []string
	root.Walk(func(n *Node) bool {
		paths = append(paths, n.Path)
		return true
	})
	assert.Equal(t, []string{"$", "$.children[0]", "$.children[1]", "$.children[1].children[0]"}, paths)

	visited := 0
	completed := root.Walk(func(n *Node) bool {
		visited++
		return n.ID != "email"
	})
	assert.False(t, completed)
	assert.Equal(t, 2, visited)

	submit := root.Find("submit")
	require.NotNil(t, submit)
	assert.Equal(t, []string{"hold", "press"}, submit.EventNames())
	assert.Nil(t, root.Find("missing"))
}

func TestNodeEvent(t *testing.T) {
	submit := sampleTree().Find("submit")
	a, ok := submit.Event("press")
	require.True(t, ok)
	assert.Equal(t, action.KindNavigate, a.Kind())

	_, ok = submit.Event("tap")
	assert.False(t, ok)

	var nilNode *Node
	_, ok = nilNode.Event("press")
	assert.False(t, ok)
	assert.False(t, nilNode.IsFallback())
}

func TestNewFallback(t *testing.T) {
	n := NewFallback("$.children[2]", "hologram", "UNKNOWN_KIND", "unsupported: hologram")
	assert.True(t, n.IsFallback())
	assert.Equal(t, FallbackKind, n.Kind)
	assert.Equal(t, "unsupported: hologram", n.Properties["text"])
	assert.Equal(t, "hologram", n.Fallback.Kind)
}

func TestNodeMarshalJSON(t *testing.T) {
	n := &Node{
		Kind:       "button",
		ID:         "go",
		Path:       "$",
		Properties: normalize.Properties{"color": normalize.Color(0xFF000000)},
		Events:     map[string]action.Action{"press": action.Navigate{Target: "/next", Replace: true}},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "button",
		"id": "go",
		"path": "$",
		"properties": {"color": "#FF000000"},
		"events": {"press": {"action": "navigate", "target": "/next", "replace": true}}
	}`, string(data))
}

func TestRendererFunc(t *testing.T) {
	var r Renderer[string] = RendererFunc[string](func(_ context.Context, n *Node) (string, error) {
		return n.Kind, nil
	})
	out, err := r.Materialize(context.Background(), sampleTree())
	require.NoError(t, err)
	assert.Equal(t, "column", out)
}
