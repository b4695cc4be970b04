package uiflow

import (
	"fmt"
	"sync"
)

// Severity grades a diagnostic. None of them abort rendering or dispatch.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a non-fatal report attached to a render or an action chain.
type Diagnostic struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s [%s] %s", d.Severity, d.Path, d.Code, d.Message)
}

// DiagnosticFromError classifies err by its text code.
func DiagnosticFromError(path string, severity Severity, err error) Diagnostic {
	code := ErrorCode(err)
	if code == "" {
		code = CodeBuilderFailed
	}
	return Diagnostic{
		Path:     path,
		Severity: severity,
		Code:     code,
		Message:  ErrorMessage(err),
	}
}

// Diagnostics accumulates entries; safe for concurrent use.
type Diagnostics struct {
	mu      sync.Mutex
	entries []Diagnostic
}

func (d *Diagnostics) Add(entries ...Diagnostic) {
	if d == nil || len(entries) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, entries...)
}

func (d *Diagnostics) AddError(path string, severity Severity, err error) {
	if err == nil {
		return
	}
	d.Add(DiagnosticFromError(path, severity, err))
}

// List returns a copy of the collected entries in insertion order.
func (d *Diagnostics) List() []Diagnostic {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// HasCode reports whether any diagnostic carries code.
func HasCode(diags []Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

// JoinPath appends a property key to a diagnostic path.
func JoinPath(base, key string) string {
	if base == "" {
		return key
	}
	if key == "" {
		return base
	}
	if key[0] == '[' {
		return base + key
	}
	return base + "." + key
}

// IndexPath appends an element index to a diagnostic path.
func IndexPath(base string, idx int) string {
	return fmt.Sprintf("%s[%d]", base, idx)
}
