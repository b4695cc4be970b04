package action

import (
	"encoding/json"
	"fmt"
	"sort"

	uiflow "github.com/goliatone/go-uiflow"
)

// Field names of the action JSON shape.
const (
	FieldAction         = "action"
	FieldOnSuccess      = "onSuccess"
	FieldOnError        = "onError"
	FieldTarget         = "target"
	FieldReplace        = "replace"
	FieldArguments      = "arguments"
	FieldUpdates        = "updates"
	FieldMethod         = "method"
	FieldEndpoint       = "endpoint"
	FieldBody           = "body"
	FieldQueryParams    = "queryParams"
	FieldHeaders        = "headers"
	FieldTimeout        = "timeout"
	FieldTimeoutSeconds = "timeoutSeconds"
	FieldHandler        = "handler"
	FieldParameters     = "parameters"
)

// ParseJSON decodes data and parses the resulting object.
func ParseJSON(data []byte) (Action, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, parseError("$", "invalid action json", err)
	}
	return Parse(raw)
}

// Parse converts a decoded JSON (or YAML) object into an Action. The variant is
// chosen by the "action" field only. Continuations are parsed recursively and
// a failure anywhere fails the whole action, so nothing partial is executed.
func Parse(raw any) (Action, error) {
	return parseAt(raw, "$")
}

func parseAt(raw any, path string) (Action, error) {
	m, ok := uiflow.AsMap(raw)
	if !ok {
		return nil, parseError(path, fmt.Sprintf("action must be an object, got %T", raw), nil)
	}
	m = uiflow.Canonicalize(m).(map[string]any)

	disc, present := m[FieldAction]
	if !present {
		return nil, parseError(path, "missing action discriminator", nil)
	}
	name, ok := disc.(string)
	if !ok {
		return nil, parseError(uiflow.JoinPath(path, FieldAction), fmt.Sprintf("action discriminator must be a string, got %T", disc), nil)
	}

	chain, err := parseChain(m, path)
	if err != nil {
		return nil, err
	}

	p := fieldParser{m: m, path: path}
	switch Kind(name) {
	case KindNavigate:
		a := Navigate{Chain: chain}
		a.Target = p.requiredString(FieldTarget)
		a.Replace = p.optionalBool(FieldReplace)
		a.Arguments = p.optionalMap(FieldArguments)
		return p.finish(a)
	case KindSetState:
		a := SetState{Chain: chain}
		a.Updates = p.requiredMap(FieldUpdates)
		return p.finish(a)
	case KindApiCall:
		a := ApiCall{Chain: chain, Method: MethodGet}
		if raw, ok := m[FieldMethod]; ok {
			s, _ := raw.(string)
			method, valid := ParseMethod(s)
			if !valid {
				p.fail(FieldMethod, fmt.Sprintf("unsupported method %v", raw))
			}
			a.Method = method
		}
		a.Endpoint = p.requiredString(FieldEndpoint)
		if body, ok := m[FieldBody]; ok && body != nil {
			a.Body = body
		}
		a.QueryParams = p.optionalMap(FieldQueryParams)
		a.Headers = p.optionalStringMap(FieldHeaders)
		a.TimeoutSeconds = p.optionalPositive(FieldTimeout, FieldTimeoutSeconds)
		return p.finish(a)
	case KindCustom:
		a := Custom{Chain: chain}
		a.Handler = p.requiredString(FieldHandler)
		a.Parameters = p.optionalMap(FieldParameters)
		return p.finish(a)
	default:
		return nil, parseError(uiflow.JoinPath(path, FieldAction), fmt.Sprintf("unknown action %q", name), nil)
	}
}

func parseChain(m map[string]any, path string) (Chain, error) {
	var (
		chain Chain
		err   error
	)
	if raw, ok := m[FieldOnSuccess]; ok && raw != nil {
		if chain.OnSuccess, err = parseAt(raw, uiflow.JoinPath(path, FieldOnSuccess)); err != nil {
			return Chain{}, err
		}
	}
	if raw, ok := m[FieldOnError]; ok && raw != nil {
		if chain.OnError, err = parseAt(raw, uiflow.JoinPath(path, FieldOnError)); err != nil {
			return Chain{}, err
		}
	}
	return chain, nil
}

// fieldParser records the first failure and keeps returning zero values.
type fieldParser struct {
	m    map[string]any
	path string
	err  error
}

func (p *fieldParser) finish(a Action) (Action, error) {
	if p.err != nil {
		return nil, p.err
	}
	return a, nil
}

func (p *fieldParser) fail(key, msg string) {
	if p.err == nil {
		p.err = parseError(uiflow.JoinPath(p.path, key), msg, nil)
	}
}

func (p *fieldParser) requiredString(key string) string {
	raw, ok := p.m[key]
	if !ok || raw == nil {
		p.fail(key, key+" is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		p.fail(key, fmt.Sprintf("%s must be a non empty string, got %v", key, raw))
		return ""
	}
	return s
}

func (p *fieldParser) optionalBool(key string) bool {
	raw, ok := p.m[key]
	if !ok || raw == nil {
		return false
	}
	b, ok := uiflow.ToBool(raw)
	if !ok {
		p.fail(key, fmt.Sprintf("%s must be a boolean, got %v", key, raw))
	}
	return b
}

func (p *fieldParser) optionalMap(key string) map[string]any {
	raw, ok := p.m[key]
	if !ok || raw == nil {
		return nil
	}
	m, ok := uiflow.AsMap(raw)
	if !ok {
		p.fail(key, fmt.Sprintf("%s must be an object, got %T", key, raw))
	}
	return m
}

func (p *fieldParser) requiredMap(key string) map[string]any {
	if _, ok := p.m[key]; !ok {
		p.fail(key, key+" is required")
		return nil
	}
	m := p.optionalMap(key)
	if m == nil && p.err == nil {
		p.fail(key, key+" must be an object")
	}
	return m
}

func (p *fieldParser) optionalStringMap(key string) map[string]string {
	m := p.optionalMap(key)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			out[k] = v
		case float64, bool:
			out[k] = uiflow.Stringify(v)
		default:
			p.fail(uiflow.JoinPath(key, k), fmt.Sprintf("header %q must be a scalar, got %T", k, v))
		}
	}
	return out
}

func (p *fieldParser) optionalPositive(keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := p.m[key]
		if !ok || raw == nil {
			continue
		}
		n, ok := uiflow.ToFloat(raw)
		if !ok || n <= 0 {
			p.fail(key, fmt.Sprintf("%s must be a positive number of seconds, got %v", key, raw))
			return nil
		}
		return &n
	}
	return nil
}

func parseError(path, msg string, source error) error {
	return uiflow.NewError(uiflow.ErrActionParse, msg, source, map[string]any{"path": path})
}

// ErrorPath returns the JSON path recorded on an action parse error.
func ErrorPath(err error) string {
	path, _ := uiflow.ErrorMetadata(err)["path"].(string)
	return path
}
