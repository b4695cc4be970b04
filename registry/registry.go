// Package registry maps node kinds to builder functions.
//
// A Registry is an explicit value handed to the render engine; there is no
// process wide instance. Registering a kind that already exists replaces the
// previous definition: the last registration wins. Default returns a registry
// populated from the static builtin table.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/host"
	"github.com/goliatone/go-uiflow/normalize"
)

// RenderFunc renders a raw node fragment from inside a builder. Overlay values
// shadow the current scope for the fragment, e.g. {item, index} in list
// templates. A nil result means the fragment was hidden by its condition.
type RenderFunc func(raw any, overlay map[string]any, path string) *host.Node

// BuildRequest carries everything a builder needs. Nothing is captured
// implicitly.
type BuildRequest struct {
	Kind       string
	ID         string
	Path       string
	Properties normalize.Properties
	Children   []*host.Node
	Events     map[string]action.Action
	Render     RenderFunc
}

// Builder produces a host node. Returning an error degrades the node to a
// fallback placeholder.
type Builder func(req BuildRequest) (*host.Node, error)

// Definition describes one node kind.
type Definition struct {
	Kind    string
	Builder Builder
	// Required property keys checked before the builder runs.
	Required []string
	// MaxChildren limits the number of children; negative means unbounded.
	MaxChildren int
	// Templates are property keys passed through raw: not normalized, not
	// bound. They are rendered later through RenderFunc.
	Templates []string
	schema    *jsonschema.Schema
}

// DefinitionOption customizes a definition at registration time.
type DefinitionOption func(*Definition) error

func WithRequired(keys ...string) DefinitionOption {
	return func(d *Definition) error {
		d.Required = append(d.Required, keys...)
		return nil
	}
}

func WithMaxChildren(n int) DefinitionOption {
	return func(d *Definition) error {
		d.MaxChildren = n
		return nil
	}
}

func WithTemplates(keys ...string) DefinitionOption {
	return func(d *Definition) error {
		d.Templates = append(d.Templates, keys...)
		return nil
	}
}

// WithPropertySchema validates the raw property bag of every node of this kind
// against a JSON Schema (draft 2020-12) document.
func WithPropertySchema(schema string) DefinitionOption {
	return func(d *Definition) error {
		compiled, err := compileSchema("mem://uiflow/kinds/"+d.Kind+".json", schema)
		if err != nil {
			return err
		}
		d.schema = compiled
		return nil
	}
}

// IsTemplate reports whether key is a raw template property.
func (d Definition) IsTemplate(key string) bool {
	for _, t := range d.Templates {
		if t == key {
			return true
		}
	}
	return false
}

// ValidateProperties checks the raw property bag against the kind's schema.
func (d Definition) ValidateProperties(raw map[string]any) error {
	if d.schema == nil {
		return nil
	}
	props := raw
	if props == nil {
		props = map[string]any{}
	}
	if err := d.schema.Validate(uiflow.Canonicalize(props)); err != nil {
		return uiflow.NewError(uiflow.ErrSchemaValidation,
			fmt.Sprintf("properties of %q do not match schema", d.Kind), err,
			map[string]any{"kind": d.Kind})
	}
	return nil
}

// Build checks the structural constraints and invokes the builder.
func (d Definition) Build(req BuildRequest) (*host.Node, error) {
	var missing []string
	for _, key := range d.Required {
		// an empty string is a bound value that is not loaded yet, not a missing key
		if v, ok := req.Properties[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed,
			fmt.Sprintf("%s requires properties: %s", d.Kind, strings.Join(missing, ", ")), nil,
			map[string]any{"kind": d.Kind, "missing": missing})
	}
	if d.MaxChildren >= 0 && len(req.Children) > d.MaxChildren {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed,
			fmt.Sprintf("%s accepts at most %d children, got %d", d.Kind, d.MaxChildren, len(req.Children)), nil,
			map[string]any{"kind": d.Kind})
	}
	node, err := d.Builder(req)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, uiflow.NewError(uiflow.ErrBuilderFailed, d.Kind+" builder returned no node", nil, nil)
	}
	return node, nil
}

// Registry holds kind definitions. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Default returns a registry loaded with the builtin kinds.
func Default() *Registry {
	r := New()
	for _, def := range builtins() {
		r.defs[def.Kind] = def
	}
	return r
}

// Register binds kind to builder. An existing definition for kind is replaced.
func (r *Registry) Register(kind string, builder Builder, opts ...DefinitionOption) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return uiflow.NewError(uiflow.ErrUnknownKind, "kind cannot be empty", nil, nil)
	}
	if builder == nil {
		return uiflow.NewError(uiflow.ErrBuilderFailed, "builder cannot be nil", nil, map[string]any{"kind": kind})
	}
	def := Definition{Kind: kind, Builder: builder, MaxChildren: -1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[kind] = def
	return nil
}

// Resolve returns the definition for kind or an UNKNOWN_KIND error.
func (r *Registry) Resolve(kind string) (Definition, error) {
	r.mu.RLock()
	def, ok := r.defs[kind]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, uiflow.NewError(uiflow.ErrUnknownKind, "unsupported: "+kind, nil, map[string]any{"kind": kind})
	}
	return def, nil
}

func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.defs))
	for kind := range r.defs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func compileSchema(url, schema string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		return nil, uiflow.NewError(uiflow.ErrSchemaValidation, "invalid property schema", err, map[string]any{"schema": url})
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, uiflow.NewError(uiflow.ErrSchemaValidation, "invalid property schema", err, map[string]any{"schema": url})
	}
	return compiled, nil
}
