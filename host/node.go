// Package host defines the descriptor handed to the host toolkit adapter and
// the boundary interface that turns it into a platform widget.
package host

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/normalize"
)

// FallbackKind marks placeholder nodes produced for unsupported or malformed
// input.
const FallbackKind = "fallback"

// Node is a renderable descriptor. Properties are already normalized and
// bound; Events hold parsed actions that are resolved only when dispatched.
type Node struct {
	Kind       string                   `json:"kind"`
	ID         string                   `json:"id,omitempty"`
	Path       string                   `json:"path"`
	Properties normalize.Properties     `json:"properties,omitempty"`
	Children   []*Node                  `json:"children,omitempty"`
	Events     map[string]action.Action `json:"-"`
	// Fallback is set when the node replaces input that could not be built.
	Fallback *FallbackInfo `json:"fallback,omitempty"`
}

// FallbackInfo describes why a placeholder was produced.
type FallbackInfo struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewFallback builds the visible placeholder for a node at path.
func NewFallback(path, kind, code, message string) *Node {
	return &Node{
		Kind: FallbackKind,
		Path: path,
		Properties: normalize.Properties{
			"text": message,
		},
		Fallback: &FallbackInfo{Kind: kind, Code: code, Message: message},
	}
}

func (n *Node) IsFallback() bool {
	return n != nil && n.Fallback != nil
}

// Event returns the action bound to name.
func (n *Node) Event(name string) (action.Action, bool) {
	if n == nil {
		return nil, false
	}
	a, ok := n.Events[name]
	return a, ok && a != nil
}

// EventNames returns the bound event names, sorted.
func (n *Node) EventNames() []string {
	names := make([]string, 0, len(n.Events))
	for name := range n.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits n and its descendants in pre-order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order whose ID matches id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(candidate *Node) bool {
		if candidate.ID == id {
			found = candidate
			return false
		}
		return true
	})
	return found
}

func (n *Node) MarshalJSON() ([]byte, error) {
	type plain Node
	out := struct {
		*plain
		Events map[string]map[string]any `json:"events,omitempty"`
	}{plain: (*plain)(n)}
	if len(n.Events) > 0 {
		out.Events = make(map[string]map[string]any, len(n.Events))
		for name, a := range n.Events {
			out.Events[name] = action.Serialize(a)
		}
	}
	return json.Marshal(out)
}

// Renderer materializes a node tree into a platform widget. It is the
// boundary to the host toolkit and is implemented outside this module.
type Renderer[W any] interface {
	Materialize(ctx context.Context, node *Node) (W, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc[W any] func(ctx context.Context, node *Node) (W, error)

func (f RendererFunc[W]) Materialize(ctx context.Context, node *Node) (W, error) {
	return f(ctx, node)
}
