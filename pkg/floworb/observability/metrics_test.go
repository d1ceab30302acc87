package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a recorder bound to a manual reader.
func setupMetricsTest(t *testing.T) (MetricsRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})

	recorder, err := NewMetricsRecorderFromMeter(provider.Meter("test"))
	require.NoError(t, err)
	return recorder, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestRecordNodeRun tests run counters, latency and error counts.
func TestRecordNodeRun(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	recorder.RecordNodeRun(ctx, "ImageEditOrGenerate", 15*time.Millisecond, "")
	recorder.RecordNodeRun(ctx, "ImageEditOrGenerate", 5*time.Millisecond, "validation")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "floworb.node.runs")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "floworb.node.errors")))

	latency := findMetric(rm, "floworb.node.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)

	errs := findMetric(rm, "floworb.node.errors").Data.(metricdata.Sum[int64])
	require.Len(t, errs.DataPoints, 1)
	category, ok := errs.DataPoints[0].Attributes.Value(attribute.Key("category"))
	require.True(t, ok)
	assert.Equal(t, "validation", category.AsString())
}

// TestRecordGeneration tests generation call counters split by outcome.
func TestRecordGeneration(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	recorder.RecordGeneration(ctx, "edit_image", time.Millisecond, nil)
	recorder.RecordGeneration(ctx, "edit_image", time.Millisecond, errors.New("quota"))
	recorder.RecordGeneration(ctx, "analyze", time.Millisecond, nil)

	rm := collectMetrics(t, reader)
	calls := findMetric(rm, "floworb.generation.calls")
	assert.Equal(t, int64(3), sumOf(t, calls))
	assert.Len(t, calls.Data.(metricdata.Sum[int64]).DataPoints, 3)
	assert.NotNil(t, findMetric(rm, "floworb.generation.latency_ms"))
}

// TestRecordRejected tests the rejection counter.
func TestRecordRejected(t *testing.T) {
	recorder, reader := setupMetricsTest(t)

	recorder.RecordRejected(context.Background(), "already_running")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "floworb.node.rejected")))
}

// TestNoopMetrics tests that the no-op recorder accepts every call.
func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordNodeRun(context.Background(), "k", time.Second, "")
		m.RecordGeneration(context.Background(), "op", time.Second, nil)
		m.RecordRejected(context.Background(), "r")
	})
}
