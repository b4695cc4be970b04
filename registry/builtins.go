package registry

import (
	"fmt"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/host"
	"github.com/goliatone/go-uiflow/normalize"
)

// Builtin kind names.
const (
	KindContainer  = "container"
	KindColumn     = "column"
	KindRow        = "row"
	KindStack      = "stack"
	KindCenter     = "center"
	KindAlign      = "align"
	KindPadding    = "padding"
	KindSizedBox   = "sizedBox"
	KindSpacer     = "spacer"
	KindExpanded   = "expanded"
	KindCard       = "card"
	KindDivider    = "divider"
	KindText       = "text"
	KindButton     = "button"
	KindIconButton = "iconButton"
	KindIcon       = "icon"
	KindImage      = "image"
	KindTextField  = "textField"
	KindCheckbox   = "checkbox"
	KindSwitch     = "switch"
	KindListView   = "listView"
)

const unbounded = -1

// builtins is the static table loaded by Default.
func builtins() []Definition {
	return []Definition{
		{Kind: KindContainer, Builder: Passthrough, MaxChildren: 1},
		{Kind: KindColumn, Builder: Passthrough, MaxChildren: unbounded},
		{Kind: KindRow, Builder: Passthrough, MaxChildren: unbounded},
		{Kind: KindStack, Builder: Passthrough, MaxChildren: unbounded},
		{Kind: KindCenter, Builder: Passthrough, MaxChildren: 1},
		{Kind: KindAlign, Builder: withDefault("alignment", normalize.Center), MaxChildren: 1},
		{Kind: KindPadding, Builder: Passthrough, Required: []string{"padding"}, MaxChildren: 1},
		{Kind: KindSizedBox, Builder: Passthrough, MaxChildren: 1},
		{Kind: KindSpacer, Builder: withDefault("flex", 1.0), MaxChildren: 0},
		{Kind: KindExpanded, Builder: withDefault("flex", 1.0), MaxChildren: 1},
		{Kind: KindCard, Builder: withDefault("elevation", 1.0), MaxChildren: 1},
		{Kind: KindDivider, Builder: Passthrough, MaxChildren: 0},
		{Kind: KindText, Builder: buildText, Required: []string{"text"}, MaxChildren: 0},
		{Kind: KindButton, Builder: Passthrough, MaxChildren: 1},
		{Kind: KindIconButton, Builder: Passthrough, Required: []string{"icon"}, MaxChildren: 0},
		{Kind: KindIcon, Builder: Passthrough, Required: []string{"icon"}, MaxChildren: 0},
		{Kind: KindImage, Builder: Passthrough, Required: []string{"src"}, MaxChildren: 0},
		{Kind: KindTextField, Builder: Passthrough, Required: []string{"id"}, MaxChildren: 0},
		{Kind: KindCheckbox, Builder: withDefault("value", false), Required: []string{"id"}, MaxChildren: 0},
		{Kind: KindSwitch, Builder: withDefault("value", false), Required: []string{"id"}, MaxChildren: 0},
		{Kind: KindListView, Builder: buildListView, Templates: []string{"itemTemplate"}, MaxChildren: unbounded},
	}
}

// Passthrough copies the request into a host node unchanged.
func Passthrough(req BuildRequest) (*host.Node, error) {
	return &host.Node{
		Kind:       req.Kind,
		ID:         req.ID,
		Path:       req.Path,
		Properties: req.Properties,
		Children:   req.Children,
		Events:     req.Events,
	}, nil
}

func withDefault(key string, value any) Builder {
	return func(req BuildRequest) (*host.Node, error) {
		node, _ := Passthrough(req)
		if !node.Properties.Has(key) {
			if node.Properties == nil {
				node.Properties = normalize.Properties{}
			}
			node.Properties[key] = value
		}
		return node, nil
	}
}

func buildText(req BuildRequest) (*host.Node, error) {
	node, _ := Passthrough(req)
	switch v := req.Properties["text"].(type) {
	case string:
	case map[string]any, []any:
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed,
			fmt.Sprintf("text must be a scalar, got %T", v), nil, nil)
	default:
		node.Properties["text"] = uiflow.Stringify(v)
	}
	return node, nil
}

// buildListView renders itemTemplate once per element of items with {item,
// index} in scope. Static children follow the generated ones.
func buildListView(req BuildRequest) (*host.Node, error) {
	node, _ := Passthrough(req)
	props := make(normalize.Properties, len(req.Properties))
	for k, v := range req.Properties {
		if k != "itemTemplate" && k != "items" {
			props[k] = v
		}
	}
	node.Properties = props

	rawItems, present := req.Properties["items"]
	if !present || rawItems == nil || rawItems == "" {
		props["itemCount"] = 0
		return node, nil
	}
	items, ok := uiflow.AsSlice(rawItems)
	if !ok {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed,
			fmt.Sprintf("listView items must be a list, got %T", rawItems), nil, nil)
	}
	template, ok := req.Properties.Map("itemTemplate")
	if !ok {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed, "listView with items requires an itemTemplate object", nil, nil)
	}
	if req.Render == nil {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed, "listView requires a render function", nil, nil)
	}

	children := make([]*host.Node, 0, len(items)+len(req.Children))
	base := uiflow.JoinPath(req.Path, "items")
	for i, item := range items {
		child := req.Render(template, map[string]any{"item": item, "index": float64(i)}, uiflow.IndexPath(base, i))
		if child != nil {
			children = append(children, child)
		}
	}
	props["itemCount"] = len(items)
	node.Children = append(children, req.Children...)
	return node, nil
}
