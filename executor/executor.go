// Package executor dispatches parsed actions and walks their continuation
// chains.
//
// A chain runs sequentially: step N+1 starts only after step N settled, and
// exactly one continuation (onSuccess or onError) is followed per step.
// Variables are resolved against a fresh snapshot of the execution context
// right before each step runs. Errors never escape Execute; they end up in the
// returned Trace and the log.
package executor

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/logging"
)

// DefaultResponseKey is the state key receiving ApiCall and custom handler
// results.
const DefaultResponseKey = "response"

// chainPath is the diagnostic path of the first action of a chain.
const chainPath = "$"

type Executor struct {
	navigator   Navigator
	http        HTTPClient
	handlers    HandlerInvoker
	logger      logging.Logger
	metrics     MetricsRecorder
	tracer      trace.Tracer
	responseKey string
}

type Option func(*Executor)

func WithNavigator(n Navigator) Option {
	return func(e *Executor) {
		e.navigator = n
	}
}

func WithHTTPClient(c HTTPClient) Option {
	return func(e *Executor) {
		e.http = c
	}
}

func WithHandlers(h HandlerInvoker) Option {
	return func(e *Executor) {
		e.handlers = h
	}
}

func WithLogger(l logging.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(e *Executor) {
		if m != nil {
			e.metrics = m
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithResponseKey changes the state key used for call results.
func WithResponseKey(key string) Option {
	return func(e *Executor) {
		if key != "" {
			e.responseKey = key
		}
	}
}

func New(opts ...Option) *Executor {
	e := &Executor{
		metrics:     nopRecorder{},
		tracer:      otel.Tracer(instrumentationName),
		responseKey: DefaultResponseKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.logger = logging.Normalize(e.logger)
	return e
}

func (e *Executor) ResponseKey() string { return e.responseKey }

// Execute runs a and its continuations against ec and blocks until the chain
// settles. When ctx is cancelled, the step in flight is recorded as cancelled
// and no further continuation runs, onError included.
func (e *Executor) Execute(ctx context.Context, a action.Action, ec *uiflow.ExecutionContext) Trace {
	if ctx == nil {
		ctx = context.Background()
	}
	if ec == nil {
		ec = uiflow.NewExecutionContext()
	}

	tr := Trace{ChainID: uuid.NewString(), StartedAt: time.Now()}
	logger := logging.WithFields(e.logger, map[string]any{logging.FieldChainID: tr.ChainID})

	ctx, span := e.tracer.Start(ctx, "uiflow.chain",
		trace.WithAttributes(attribute.String("uiflow.chain_id", tr.ChainID)))
	defer span.End()

	current, path := a, chainPath
	for index := 0; current != nil; index++ {
		if ctx.Err() != nil {
			tr.Cancelled = true
			logger.Debug("chain cancelled before step %d", index)
			break
		}

		stepLogger := logging.WithFields(logger, map[string]any{logging.FieldStep: index, logging.FieldAction: string(current.Kind())})
		step := e.step(ctx, current, ec, index, path, stepLogger)
		tr.Steps = append(tr.Steps, step)

		if step.Outcome == OutcomeCancelled {
			tr.Cancelled = true
			break
		}

		succeeded := step.Outcome == OutcomeSucceeded
		next := current.Continuations().Next(succeeded)
		if next == nil && !succeeded {
			stepLogger.Warn("action failed without onError: %s", step.Error)
		}
		path = continuationPath(path, succeeded)
		current = next
	}

	tr.FinishedAt = time.Now()
	span.SetAttributes(
		attribute.Int("uiflow.steps", len(tr.Steps)),
		attribute.Bool("uiflow.cancelled", tr.Cancelled),
	)
	if err := tr.Err(); err != nil && !tr.Succeeded() {
		span.SetStatus(codes.Error, uiflow.ErrorMessage(err))
	}
	logger.Debug("chain settled after %d steps", len(tr.Steps))
	return tr
}

// Dispatch runs the chain on its own goroutine. The channel receives the
// trace once and is then closed.
func (e *Executor) Dispatch(ctx context.Context, a action.Action, ec *uiflow.ExecutionContext) <-chan Trace {
	out := make(chan Trace, 1)
	go func() {
		defer close(out)
		out <- e.Execute(ctx, a, ec)
	}()
	return out
}

func (e *Executor) step(ctx context.Context, a action.Action, ec *uiflow.ExecutionContext, index int, path string, logger logging.Logger) Step {
	kind := string(a.Kind())
	ctx, span := e.tracer.Start(ctx, "uiflow.action."+kind,
		trace.WithAttributes(
			attribute.String("uiflow.action", kind),
			attribute.Int("uiflow.step", index),
		))
	defer span.End()

	start := time.Now()
	var diags []uiflow.Diagnostic
	err := uiflow.Recover(failureBase(a.Kind()), kind+" action", func() error {
		var runErr error
		diags, runErr = e.run(ctx, a, ec, path)
		return runErr
	})

	step := Step{
		Index:       index,
		Kind:        a.Kind(),
		Outcome:     OutcomeSucceeded,
		Diagnostics: diags,
		Duration:    time.Since(start),
	}
	for _, d := range diags {
		logger.Warn("%s", d.String())
	}

	e.metrics.RecordDuration(kind, step.Duration)
	switch {
	case err != nil && ctx.Err() != nil:
		step.Outcome = OutcomeCancelled
		step.Err = err
		step.Error = "cancelled"
		logger.Info("action cancelled")
	case err != nil:
		step.Outcome = OutcomeFailed
		step.Err = err
		step.Code = uiflow.ErrorCode(err)
		step.Error = uiflow.ErrorMessage(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, step.Error)
		e.metrics.RecordError(kind)
		logger.Debug("action failed: %s", step.Error)
	default:
		e.metrics.RecordSuccess(kind)
		logger.Debug("action succeeded")
	}
	return step
}

func (e *Executor) run(ctx context.Context, a action.Action, ec *uiflow.ExecutionContext, path string) ([]uiflow.Diagnostic, error) {
	switch act := a.(type) {
	case action.Navigate:
		return e.navigate(ctx, act, ec, path)
	case action.SetState:
		return e.setState(act, ec, path)
	case action.ApiCall:
		return e.apiCall(ctx, act, ec, path)
	case action.Custom:
		return e.custom(ctx, act, ec, path)
	}
	return nil, uiflow.NewError(uiflow.ErrActionParse, fmt.Sprintf("unsupported action %T", a), nil, nil)
}

// failureBase is the error a panicking step is reported as.
func failureBase(kind action.Kind) *apperrors.Error {
	switch kind {
	case action.KindNavigate:
		return uiflow.ErrNavigation
	case action.KindSetState:
		return uiflow.ErrStateUpdate
	case action.KindApiCall:
		return uiflow.ErrNetwork
	default:
		return uiflow.ErrHandlerFailed
	}
}

func continuationPath(path string, succeeded bool) string {
	if succeeded {
		return uiflow.JoinPath(path, action.FieldOnSuccess)
	}
	return uiflow.JoinPath(path, action.FieldOnError)
}
