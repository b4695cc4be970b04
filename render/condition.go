package render

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/vars"
)

// Condition operators accepted by rule objects.
const (
	OpEq        = "eq"
	OpNeq       = "neq"
	OpIn        = "in"
	OpNotIn     = "not_in"
	OpExists    = "exists"
	OpNotExists = "not_exists"
	OpTruthy    = "truthy"
	OpFalsy     = "falsy"
	OpGt        = "gt"
	OpGte       = "gte"
	OpLt        = "lt"
	OpLte       = "lte"
)

// ConditionEvaluator decides whether a node takes part in the tree. It accepts
// a boolean, a single ${path} token, a rule object or a CEL expression over
// fields, state, session, item and index. Compiled programs are cached.
type ConditionEvaluator struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

func NewConditionEvaluator() (*ConditionEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(uiflow.ScopeFields, cel.DynType),
		cel.Variable(uiflow.ScopeState, cel.DynType),
		cel.Variable(uiflow.ScopeSession, cel.DynType),
		cel.Variable("item", cel.DynType),
		cel.Variable("index", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &ConditionEvaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Evaluate returns the visibility for cond. A nil condition is visible. A CEL
// expression reading a value that is not set yet evaluates to false with a
// VARIABLE_RESOLUTION error, which callers treat as a warning.
func (e *ConditionEvaluator) Evaluate(cond any, scope uiflow.Scope) (bool, error) {
	switch c := cond.(type) {
	case nil:
		return true, nil
	case bool:
		return c, nil
	case string:
		return e.evaluateString(c, scope)
	}
	if rule, ok := uiflow.AsMap(cond); ok {
		return evaluateRule(rule, scope)
	}
	return false, conditionError(fmt.Sprintf("unsupported condition type %T", cond), nil)
}

func (e *ConditionEvaluator) evaluateString(expr string, scope uiflow.Scope) (bool, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "":
		return false, conditionError("empty condition", nil)
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if name, ok := vars.WholeToken(expr); ok {
		v, found := lookup(scope, name)
		return found && uiflow.Truthy(v), nil
	}

	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(uiflow.Flatten(scope))
	if err != nil {
		if missingValue(err) {
			return false, uiflow.NewError(uiflow.ErrVariableResolution,
				"condition reads a missing value: "+expr, err, map[string]any{"condition": expr})
		}
		return false, conditionError("condition evaluation failed: "+expr, err)
	}
	visible, ok := out.Value().(bool)
	if !ok {
		return false, conditionError(fmt.Sprintf("condition %q is not boolean", expr), nil)
	}
	return visible, nil
}

// missingValue reports CEL runtime errors caused by absent keys or
// attributes, as opposed to type or overload errors.
func missingValue(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such key") || strings.Contains(msg, "no such attribute")
}

func (e *ConditionEvaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.cache[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.cache[expr]; hit {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, conditionError("condition does not compile: "+expr, issues.Err())
	}
	prg, err := e.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, conditionError("condition program error: "+expr, err)
	}
	e.cache[expr] = prg
	return prg, nil
}

func evaluateRule(rule map[string]any, scope uiflow.Scope) (bool, error) {
	// "field" names an input field; "path" is resolved like a ${path} token.
	path, _ := rule["path"].(string)
	if field, ok := rule["field"].(string); ok && path == "" && field != "" {
		path = uiflow.ScopeFields + "." + field
	}
	if path == "" {
		return false, conditionError("rule requires path or field", nil)
	}
	op, _ := rule["operator"].(string)
	if op == "" {
		op = OpTruthy
	}

	actual, found := lookup(scope, path)
	expected := rule["value"]
	switch op {
	case OpExists:
		return found, nil
	case OpNotExists:
		return !found, nil
	case OpTruthy:
		return found && uiflow.Truthy(actual), nil
	case OpFalsy:
		return !found || !uiflow.Truthy(actual), nil
	case OpEq:
		return found && equalValues(actual, expected), nil
	case OpNeq:
		return !found || !equalValues(actual, expected), nil
	case OpIn, OpNotIn:
		values, ok := uiflow.AsSlice(rule["values"])
		if !ok {
			return false, conditionError(op+" requires a values list", nil)
		}
		in := false
		for _, v := range values {
			if found && equalValues(actual, v) {
				in = true
				break
			}
		}
		return in == (op == OpIn), nil
	case OpGt, OpGte, OpLt, OpLte:
		if !found {
			return false, nil
		}
		a, okA := uiflow.ToFloat(actual)
		b, okB := uiflow.ToFloat(expected)
		if !okA || !okB {
			return false, nil
		}
		switch op {
		case OpGt:
			return a > b, nil
		case OpGte:
			return a >= b, nil
		case OpLt:
			return a < b, nil
		default:
			return a <= b, nil
		}
	}
	return false, conditionError(fmt.Sprintf("unknown operator %q", op), nil)
}

func lookup(scope uiflow.Scope, path string) (any, bool) {
	if scope == nil {
		return nil, false
	}
	return scope.Lookup(path)
}

func equalValues(a, b any) bool {
	if fa, ok := uiflow.ToFloat(a); ok {
		if fb, ok := uiflow.ToFloat(b); ok {
			_, aString := a.(string)
			_, bString := b.(string)
			if !aString && !bString {
				return fa == fb
			}
		}
	}
	return reflect.DeepEqual(uiflow.Canonicalize(a), uiflow.Canonicalize(b))
}

func conditionError(msg string, source error) error {
	return uiflow.NewError(uiflow.ErrSchemaValidation, msg, source, map[string]any{"field": "visibilityCondition"})
}
