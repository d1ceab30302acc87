package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records node run metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeRun records a finished run. category is empty on success.
	RecordNodeRun(ctx context.Context, kind string, duration time.Duration, category string)

	// RecordGeneration records one Generation Service call.
	RecordGeneration(ctx context.Context, op string, duration time.Duration, err error)

	// RecordRejected records a run refused before it started.
	RecordRejected(ctx context.Context, reason string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	nodeRuns          metric.Int64Counter
	nodeLatency       metric.Float64Histogram
	nodeErrors        metric.Int64Counter
	generationCalls   metric.Int64Counter
	generationLatency metric.Float64Histogram
	rejected          metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("floworb"))
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	nodeRuns, err := meter.Int64Counter("floworb.node.runs",
		metric.WithDescription("Number of node runs"),
	)
	if err != nil {
		return nil, err
	}

	nodeLatency, err := meter.Float64Histogram("floworb.node.latency_ms",
		metric.WithDescription("Node run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	nodeErrors, err := meter.Int64Counter("floworb.node.errors",
		metric.WithDescription("Number of failed node runs"),
	)
	if err != nil {
		return nil, err
	}

	generationCalls, err := meter.Int64Counter("floworb.generation.calls",
		metric.WithDescription("Number of Generation Service calls"),
	)
	if err != nil {
		return nil, err
	}

	generationLatency, err := meter.Float64Histogram("floworb.generation.latency_ms",
		metric.WithDescription("Generation Service latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("floworb.node.rejected",
		metric.WithDescription("Number of runs refused before starting"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		nodeRuns:          nodeRuns,
		nodeLatency:       nodeLatency,
		nodeErrors:        nodeErrors,
		generationCalls:   generationCalls,
		generationLatency: generationLatency,
		rejected:          rejected,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFromMeter returns a MetricsRecorder bound to meter.
func NewMetricsRecorderFromMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newOtelMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordNodeRun records a node run.
func (m *otelMetrics) RecordNodeRun(ctx context.Context, kind string, duration time.Duration, category string) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", category == ""),
	)
	m.nodeRuns.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if category != "" {
		m.nodeErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("category", category),
		))
	}
}

// RecordGeneration records a Generation Service call.
func (m *otelMetrics) RecordGeneration(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Bool("success", err == nil),
	)
	m.generationCalls.Add(ctx, 1, attrs)
	m.generationLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordRejected records a refused run.
func (m *otelMetrics) RecordRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
