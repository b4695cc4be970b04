// Package render turns node descriptions into host node trees.
//
// The walk is depth-first and pre-order. Every failure is recovered at the
// node where it happens: the node becomes a visible fallback placeholder, a
// diagnostic carrying the node path is recorded, and siblings and ancestors
// render normally. Render never panics and never returns a nil tree.
package render

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/host"
	"github.com/goliatone/go-uiflow/logging"
	"github.com/goliatone/go-uiflow/normalize"
	"github.com/goliatone/go-uiflow/registry"
	"github.com/goliatone/go-uiflow/vars"
)

// RootPath is the diagnostic path of the root node.
const RootPath = "$"

// Node field names.
const (
	FieldKind                = "kind"
	FieldID                  = "id"
	FieldProperties          = "properties"
	FieldChildren            = "children"
	FieldEvents              = "events"
	FieldVisibilityCondition = "visibilityCondition"
)

// Result is the output of a render pass.
type Result struct {
	ID          string              `json:"id"`
	Root        *host.Node          `json:"root"`
	Diagnostics []uiflow.Diagnostic `json:"diagnostics"`
}

// HasErrors reports whether any diagnostic has error severity.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == uiflow.SeverityError {
			return true
		}
	}
	return false
}

// Engine renders node descriptions. It holds no per-render state and may be
// shared by concurrent renders.
type Engine struct {
	registry   *registry.Registry
	normalizer *normalize.Normalizer
	conditions *ConditionEvaluator
	logger     logging.Logger
	strict     bool
	bind       bool
	versions   *versionCheck
}

// Option configures an Engine.
type Option func(*Engine)

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

func WithConditionEvaluator(c *ConditionEvaluator) Option {
	return func(e *Engine) {
		if c != nil {
			e.conditions = c
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStrictProperties turns property schema violations into fallback nodes.
// By default they are reported as warnings.
func WithStrictProperties(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithPropertyBinding toggles ${...} interpolation of property values at
// render time. Enabled by default.
func WithPropertyBinding(bind bool) Option {
	return func(e *Engine) {
		e.bind = bind
	}
}

// WithSupportedVersions sets the semver constraint checked by RenderDocument.
func WithSupportedVersions(constraint string) Option {
	return func(e *Engine) {
		e.versions = newVersionCheck(constraint)
	}
}

// New builds an engine over reg. A nil registry means registry.Default().
func New(reg *registry.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		reg = registry.Default()
	}
	e := &Engine{
		registry:   reg,
		normalizer: normalize.New(),
		bind:       true,
		versions:   newVersionCheck(DefaultSupportedVersions),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.conditions == nil {
		c, err := NewConditionEvaluator()
		if err != nil {
			return nil, err
		}
		e.conditions = c
	}
	if e.versions.err != nil {
		return nil, e.versions.err
	}
	e.logger = logging.Normalize(e.logger)
	if _, err := compiledNodeSchema(); err != nil {
		return nil, fmt.Errorf("node schema: %w", err)
	}
	return e, nil
}

func (e *Engine) Registry() *registry.Registry { return e.registry }

// RenderJSON decodes data and renders it.
func (e *Engine) RenderJSON(data []byte, scope uiflow.Scope) Result {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		w := e.newWalker()
		root := w.fallback(RootPath, "", uiflow.NewError(uiflow.ErrSchemaValidation, "invalid node json", err, nil))
		return w.result(root)
	}
	return e.Render(raw, scope)
}

// Render walks raw against scope.
func (e *Engine) Render(raw any, scope uiflow.Scope) Result {
	if scope == nil {
		scope = uiflow.MapScope{}
	}
	w := e.newWalker()
	root := w.renderRoot(raw, scope)
	res := w.result(root)
	e.logger.Debug("render %s produced %d diagnostics", res.ID, len(res.Diagnostics))
	return res
}

func (e *Engine) newWalker() *walker {
	return &walker{engine: e, id: uuid.NewString(), diags: &uiflow.Diagnostics{}}
}

// walker holds the state of one render pass.
type walker struct {
	engine *Engine
	id     string
	diags  *uiflow.Diagnostics
}

func (w *walker) result(root *host.Node) Result {
	diags := w.diags.List()
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Path < diags[j].Path })
	return Result{ID: w.id, Root: root, Diagnostics: diags}
}

func (w *walker) renderRoot(raw any, scope uiflow.Scope) (root *host.Node) {
	defer func() {
		if r := recover(); r != nil {
			root = w.fallback(RootPath, "", uiflow.NewError(uiflow.ErrBuilderFailed,
				fmt.Sprintf("render panicked: %v", r), nil, nil))
		}
	}()
	root = w.render(raw, scope, RootPath)
	if root == nil {
		root = &host.Node{Kind: registry.KindSizedBox, Path: RootPath, Properties: normalize.Properties{}}
		w.diags.Add(uiflow.Diagnostic{
			Path:     RootPath,
			Severity: uiflow.SeverityInfo,
			Code:     uiflow.CodeSchemaValidation,
			Message:  "root node hidden by its visibility condition",
		})
	}
	return root
}

// render returns nil only when the node is hidden by its condition.
func (w *walker) render(raw any, scope uiflow.Scope, path string) *host.Node {
	m, ok := uiflow.AsMap(raw)
	if !ok {
		return w.fallback(path, "", uiflow.NewError(uiflow.ErrSchemaValidation,
			fmt.Sprintf("node must be an object, got %T", raw), nil, nil))
	}
	m, _ = uiflow.Canonicalize(m).(map[string]any)

	rawKind, present := m[FieldKind]
	kind, _ := rawKind.(string)
	switch {
	case !present || rawKind == nil:
		return w.fallback(path, "", uiflow.NewError(uiflow.ErrSchemaValidation, "node is missing kind", nil, nil))
	case kind == "":
		return w.fallback(path, "", uiflow.NewError(uiflow.ErrSchemaValidation,
			fmt.Sprintf("kind must be a non empty string, got %s", describeKind(rawKind)), nil, nil))
	}
	if err := validateNode(m); err != nil {
		return w.fallback(path, kind, err)
	}

	if cond, present := m[FieldVisibilityCondition]; present && cond != nil {
		visible, err := w.engine.conditions.Evaluate(cond, scope)
		if err != nil && uiflow.IsCode(err, uiflow.CodeVariableResolution) {
			w.diags.AddError(uiflow.JoinPath(path, FieldVisibilityCondition), uiflow.SeverityWarning, err)
			w.engine.logger.Debug("condition at %s reads a missing value, node hidden", path)
			return nil
		}
		if err != nil {
			return w.fallback(path, kind, err)
		}
		if !visible {
			return nil
		}
	}

	def, resolveErr := w.engine.registry.Resolve(kind)
	rawProps, _ := uiflow.AsMap(m[FieldProperties])
	props, err := w.properties(rawProps, def, scope, path)
	if err != nil {
		return w.fallback(path, kind, err)
	}

	children := w.children(m[FieldChildren], scope, path)
	events := w.events(m[FieldEvents], path)

	if resolveErr != nil {
		node := w.fallback(path, kind, resolveErr)
		node.Children = children
		return node
	}

	id, _ := m[FieldID].(string)
	if id == "" {
		id, _ = props[FieldID].(string)
	}
	req := registry.BuildRequest{
		Kind:       kind,
		ID:         id,
		Path:       path,
		Properties: props,
		Children:   children,
		Events:     events,
		Render: func(fragment any, overlay map[string]any, fragmentPath string) *host.Node {
			return w.render(fragment, uiflow.Overlay{Base: scope, Values: overlay}, fragmentPath)
		},
	}

	var node *host.Node
	err = uiflow.Recover(uiflow.ErrBuilderFailed, kind+" builder", func() error {
		var buildErr error
		node, buildErr = def.Build(req)
		return buildErr
	})
	if err != nil {
		return w.fallback(path, kind, err)
	}
	if node.Path == "" {
		node.Path = path
	}
	return node
}

// properties binds, validates and normalizes the property bag. Template keys
// of the definition are passed through raw. The error is set only for schema
// violations in strict mode.
func (w *walker) properties(raw map[string]any, def registry.Definition, scope uiflow.Scope, path string) (normalize.Properties, error) {
	propsPath := uiflow.JoinPath(path, FieldProperties)
	plain := make(map[string]any, len(raw))
	templates := make(map[string]any)
	for k, v := range raw {
		if def.IsTemplate(k) {
			templates[k] = v
			continue
		}
		plain[k] = v
	}

	if w.engine.bind && vars.HasTokens(plain) {
		bound, diags := vars.ResolveMap(plain, scope, propsPath)
		w.diags.Add(diags...)
		plain = bound
	}

	if err := def.ValidateProperties(plain); err != nil {
		if w.engine.strict {
			return nil, err
		}
		w.diags.AddError(propsPath, uiflow.SeverityWarning, err)
	}

	props, diags := w.engine.normalizer.Properties(plain, propsPath)
	w.diags.Add(diags...)
	for k, v := range templates {
		props[k] = v
	}
	return props, nil
}

func (w *walker) children(raw any, scope uiflow.Scope, path string) []*host.Node {
	items, ok := uiflow.AsSlice(raw)
	if !ok || len(items) == 0 {
		return nil
	}
	base := uiflow.JoinPath(path, FieldChildren)
	out := make([]*host.Node, 0, len(items))
	for i, item := range items {
		if child := w.render(item, scope, uiflow.IndexPath(base, i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// events parses each binding. A malformed action is reported and dropped so
// it can never reach the executor.
func (w *walker) events(raw any, path string) map[string]action.Action {
	m, ok := uiflow.AsMap(raw)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]action.Action, len(m))
	for name, rawAction := range m {
		a, err := action.Parse(rawAction)
		if err != nil {
			w.diags.AddError(uiflow.JoinPath(uiflow.JoinPath(path, FieldEvents), name), uiflow.SeverityError, err)
			continue
		}
		out[name] = a
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (w *walker) fallback(path, kind string, err error) *host.Node {
	diag := uiflow.DiagnosticFromError(path, uiflow.SeverityError, err)
	w.diags.Add(diag)
	w.engine.logger.Warn("render fallback at %s: %s", path, diag.Message)
	return host.NewFallback(path, kind, diag.Code, diag.Message)
}

func validateNode(m map[string]any) error {
	schema, err := compiledNodeSchema()
	if err != nil {
		return uiflow.NewError(uiflow.ErrSchemaValidation, "node schema unavailable", err, nil)
	}
	if err := schema.Validate(m); err != nil {
		return uiflow.NewError(uiflow.ErrSchemaValidation, "malformed node", err, nil)
	}
	return nil
}

func describeKind(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%T", v)
}
