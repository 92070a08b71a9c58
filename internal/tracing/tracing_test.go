package tracing

import (
	"context"
	"shoppingts/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewProvider_ExportsWithServiceName(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	cfg := config.TracingConfig{ServiceName: "shoppingts-test", SampleRatio: 1}

	tp, err := newProvider(ctx, cfg, sdktrace.WithSyncer(exporter))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "Cart.Add")
	span.End()
	require.NoError(t, tp.Shutdown(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Cart.Add", spans[0].Name)

	name, ok := spans[0].Resource.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "shoppingts-test", name.AsString())
}

func TestNewProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()

	tp, err := newProvider(ctx, config.TracingConfig{ServiceName: "s", SampleRatio: 0}, sdktrace.WithSyncer(exporter))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "Orders.Place")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}

func TestSampleRatio_Clamped(t *testing.T) {
	assert.Equal(t, 0.0, sampleRatio(-0.5))
	assert.Equal(t, 0.25, sampleRatio(0.25))
	assert.Equal(t, 1.0, sampleRatio(3))
}
