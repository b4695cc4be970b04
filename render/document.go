package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	uiflow "github.com/goliatone/go-uiflow"
)

// DefaultSupportedVersions is the document version constraint used when none
// is configured.
const DefaultSupportedVersions = ">=1.0.0, <2.0.0"

// Document is a versioned screen description.
type Document struct {
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Version string         `json:"version,omitempty" yaml:"version,omitempty"`
	Root    map[string]any `json:"root" yaml:"root"`
}

// ParseDocument accepts JSON or YAML. A bare node (an object with "kind" and
// no "root") is wrapped into a document without version.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, uiflow.NewError(uiflow.ErrSchemaValidation, "empty document", nil, nil)
	}

	var raw any
	var err error
	if trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &raw)
	} else {
		err = yaml.Unmarshal(trimmed, &raw)
	}
	if err != nil {
		return Document{}, uiflow.NewError(uiflow.ErrSchemaValidation, "document does not parse", err, nil)
	}

	m, ok := uiflow.AsMap(uiflow.Canonicalize(raw))
	if !ok {
		return Document{}, uiflow.NewError(uiflow.ErrSchemaValidation, "document must be an object", nil, nil)
	}
	if _, isNode := m[FieldKind]; isNode {
		if _, hasRoot := m["root"]; !hasRoot {
			return Document{Root: m}, nil
		}
	}

	doc := Document{}
	doc.ID, _ = m["id"].(string)
	switch v := m["version"].(type) {
	case string:
		doc.Version = v
	case float64:
		doc.Version = uiflow.Stringify(v)
	}
	root, ok := uiflow.AsMap(m["root"])
	if !ok {
		return Document{}, uiflow.NewError(uiflow.ErrSchemaValidation, "document root must be a node object", nil, map[string]any{"id": doc.ID})
	}
	doc.Root = root
	return doc, nil
}

// RenderDocument checks the document version and renders its root. Version
// problems are reported as warnings; rendering always proceeds.
func (e *Engine) RenderDocument(doc Document, scope uiflow.Scope) Result {
	res := e.Render(doc.Root, scope)
	if doc.ID != "" {
		res.ID = doc.ID
	}
	if diag, bad := e.versions.check(doc.Version); bad {
		res.Diagnostics = append([]uiflow.Diagnostic{diag}, res.Diagnostics...)
	}
	return res
}

type versionCheck struct {
	raw        string
	constraint *semver.Constraints
	err        error
}

func newVersionCheck(raw string) *versionCheck {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &versionCheck{}
	}
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return &versionCheck{raw: raw, err: fmt.Errorf("invalid supported versions %q: %w", raw, err)}
	}
	return &versionCheck{raw: raw, constraint: c}
}

func (v *versionCheck) check(version string) (uiflow.Diagnostic, bool) {
	if v == nil || v.constraint == nil || strings.TrimSpace(version) == "" {
		return uiflow.Diagnostic{}, false
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return versionDiag(fmt.Sprintf("document version %q is not semver: %v", version, err)), true
	}
	if !v.constraint.Check(parsed) {
		return versionDiag(fmt.Sprintf("document version %s does not satisfy %s", parsed, v.raw)), true
	}
	return uiflow.Diagnostic{}, false
}

func versionDiag(msg string) uiflow.Diagnostic {
	return uiflow.Diagnostic{
		Path:     RootPath,
		Severity: uiflow.SeverityWarning,
		Code:     uiflow.CodeSchemaValidation,
		Message:  msg,
	}
}
