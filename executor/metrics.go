package executor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder receives per-step measurements. Names are the action kind.
type MetricsRecorder interface {
	RecordDuration(name string, duration time.Duration)
	RecordError(name string)
	RecordSuccess(name string)
}

type nopRecorder struct{}

func (nopRecorder) RecordDuration(string, time.Duration) {}
func (nopRecorder) RecordError(string)                   {}
func (nopRecorder) RecordSuccess(string)                 {}

const instrumentationName = "github.com/goliatone/go-uiflow/executor"

// OtelRecorder reports step metrics through an OpenTelemetry meter.
type OtelRecorder struct {
	succeeded metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewOtelRecorder creates the instruments on meter. A nil meter uses the
// global provider.
func NewOtelRecorder(meter metric.Meter) (*OtelRecorder, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	succeeded, err := meter.Int64Counter(
		"uiflow.actions.succeeded",
		metric.WithDescription("Total number of actions that succeeded"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"uiflow.actions.failed",
		metric.WithDescription("Total number of actions that failed"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"uiflow.action.duration",
		metric.WithDescription("Duration of action execution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &OtelRecorder{succeeded: succeeded, failed: failed, duration: duration}, nil
}

func (r *OtelRecorder) RecordDuration(name string, d time.Duration) {
	r.duration.Record(context.Background(), d.Seconds(),
		metric.WithAttributes(attribute.String("action.kind", name)))
}

func (r *OtelRecorder) RecordError(name string) {
	r.failed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("action.kind", name)))
}

func (r *OtelRecorder) RecordSuccess(name string) {
	r.succeeded.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("action.kind", name)))
}
