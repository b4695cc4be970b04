package executor

import (
	"context"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/vars"
)

func (e *Executor) navigate(ctx context.Context, a action.Navigate, ec *uiflow.ExecutionContext, path string) ([]uiflow.Diagnostic, error) {
	scope := ec.Snapshot()
	target, diags := vars.Interpolate(a.Target, scope, uiflow.JoinPath(path, action.FieldTarget))
	args, d := vars.ResolveMap(a.Arguments, scope, uiflow.JoinPath(path, action.FieldArguments))
	diags = append(diags, d...)

	if e.navigator == nil {
		return diags, uiflow.NewError(uiflow.ErrNavigation, "no navigator configured", nil, map[string]any{"target": target})
	}
	if err := e.navigator.Navigate(ctx, target, a.Replace, args); err != nil {
		if ctx.Err() != nil || uiflow.ErrorCode(err) != "" {
			return diags, err
		}
		return diags, uiflow.NewError(uiflow.ErrNavigation, "navigation to "+target+" failed", err, map[string]any{"target": target})
	}
	return diags, nil
}

func (e *Executor) setState(a action.SetState, ec *uiflow.ExecutionContext, path string) ([]uiflow.Diagnostic, error) {
	updates, diags := vars.ResolveMap(a.Updates, ec.Snapshot(), uiflow.JoinPath(path, action.FieldUpdates))
	return diags, ec.ApplyState(updates)
}

func (e *Executor) apiCall(ctx context.Context, a action.ApiCall, ec *uiflow.ExecutionContext, path string) ([]uiflow.Diagnostic, error) {
	scope := ec.Snapshot()
	endpoint, diags := vars.Interpolate(a.Endpoint, scope, uiflow.JoinPath(path, action.FieldEndpoint))
	body, d := vars.Resolve(a.Body, scope, uiflow.JoinPath(path, action.FieldBody))
	diags = append(diags, d...)
	query, d := vars.ResolveMap(a.QueryParams, scope, uiflow.JoinPath(path, action.FieldQueryParams))
	diags = append(diags, d...)
	headers, d := vars.ResolveStrings(a.Headers, scope, uiflow.JoinPath(path, action.FieldHeaders))
	diags = append(diags, d...)

	if e.http == nil {
		return diags, uiflow.NewError(uiflow.ErrNetwork, "no http client configured", nil, map[string]any{"endpoint": endpoint})
	}

	method := a.Method
	if method == "" {
		method = action.MethodGet
	}
	resp, err := e.http.Do(ctx, Request{
		Method:  string(method),
		URL:     endpoint,
		Query:   query,
		Headers: headers,
		Body:    body,
		Timeout: a.Timeout(),
	})
	if resp != nil {
		if stateErr := ec.ApplyState(map[string]any{e.responseKey: responseState(resp)}); stateErr != nil && err == nil {
			err = stateErr
		}
	}
	if err != nil {
		if ctx.Err() != nil || uiflow.ErrorCode(err) != "" {
			return diags, err
		}
		return diags, uiflow.NewError(uiflow.ErrNetwork, string(method)+" "+endpoint+" failed", err, map[string]any{"endpoint": endpoint})
	}
	if resp == nil {
		return diags, uiflow.NewError(uiflow.ErrNetwork, "http client returned no response", nil, map[string]any{"endpoint": endpoint})
	}
	return diags, nil
}

func (e *Executor) custom(ctx context.Context, a action.Custom, ec *uiflow.ExecutionContext, path string) ([]uiflow.Diagnostic, error) {
	params, diags := vars.ResolveMap(a.Parameters, ec.Snapshot(), uiflow.JoinPath(path, action.FieldParameters))
	if e.handlers == nil {
		return diags, uiflow.NewError(uiflow.ErrHandlerNotFound, "handler not found: "+a.Handler, nil, map[string]any{"handler": a.Handler})
	}
	if params == nil {
		params = map[string]any{}
	}
	result, err := e.handlers.Invoke(ctx, a.Handler, params)
	if err != nil {
		if ctx.Err() != nil || uiflow.ErrorCode(err) != "" {
			return diags, err
		}
		return diags, uiflow.NewError(uiflow.ErrHandlerFailed, "handler "+a.Handler+" failed", err, map[string]any{"handler": a.Handler})
	}
	if m, ok := uiflow.AsMap(result); ok {
		return diags, ec.ApplyState(map[string]any{e.responseKey: map[string]any{"data": uiflow.Canonicalize(m)}})
	}
	return diags, nil
}

func responseState(resp *Response) map[string]any {
	headers := make(map[string]any, len(resp.Headers))
	for k, v := range resp.Headers {
		headers[k] = v
	}
	return map[string]any{
		"data":       uiflow.Canonicalize(resp.Data),
		"statusCode": float64(resp.StatusCode),
		"headers":    headers,
	}
}
