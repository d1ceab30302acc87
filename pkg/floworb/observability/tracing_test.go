package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest installs an in-memory tracer provider for the test.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value.AsString(), true
		}
	}
	return "", false
}

// TestStartRunSpan tests the run span name and attributes.
func TestStartRunSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartRunSpan(context.Background(), "node-2", "ImageEditOrGenerate", "run-1")
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "floworb.node.run", s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)

	id, ok := attrValue(s.Attributes, "node.id")
	require.True(t, ok)
	assert.Equal(t, "node-2", id)
	run, _ := attrValue(s.Attributes, "run.id")
	assert.Equal(t, "run-1", run)
}

// TestStartGenerationSpan tests that generation spans are client children of the run.
func TestStartGenerationSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, parent := sm.StartRunSpan(context.Background(), "n", "k", "r")
	_, child := sm.StartGenerationSpan(ctx, "edit_image")
	sm.EndSpanWithError(child, errors.New("quota"))
	sm.EndSpanWithError(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	gen := spans[0]
	assert.Equal(t, "floworb.generation.edit_image", gen.Name)
	assert.Equal(t, trace.SpanKindClient, gen.SpanKind)
	assert.Equal(t, codes.Error, gen.Status.Code)
	assert.Equal(t, "quota", gen.Status.Description)
	require.Len(t, gen.Events, 1)
	assert.Equal(t, "exception", gen.Events[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), gen.Parent.SpanID())
}

// TestAddSpanEvent tests events on the span in context.
func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartRunSpan(context.Background(), "n", "k", "r")
	sm.AddSpanEvent(ctx, "journal.appended", attribute.String("run.id", "r"))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "journal.appended", spans[0].Events[0].Name)

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "no span")
		sm.EndSpanWithError(nil, nil)
	})
}

// TestNoopSpanManager tests that no-op spans record nothing.
func TestNoopSpanManager(t *testing.T) {
	exporter := setupTracingTest(t)
	var sm SpanManager = NoopSpanManager{}

	ctx, span := sm.StartRunSpan(context.Background(), "n", "k", "r")
	sm.AddSpanEvent(ctx, "e")
	sm.EndSpanWithError(span, errors.New("x"))

	assert.Empty(t, exporter.GetSpans())
}

// TestInstallTracerProvider tests that the installed provider becomes global.
func TestInstallTracerProvider(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := installTracerProvider("floworb-test", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)

	_, span := NewSpanManager().StartRunSpan(context.Background(), "n", "k", "r")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	name, ok := attrValue(spans[0].Resource.Attributes(), "service.name")
	require.True(t, ok)
	assert.Equal(t, "floworb-test", name)

	require.NoError(t, shutdown(context.Background()))
}
