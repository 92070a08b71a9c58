package tracing

import (
	"context"
	"fmt"
	"log"
	"shoppingts/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup подключает экспорт трейсов витрины в Jaeger и регистрирует провайдер
// глобально, вместе с W3C-пропагацией контекста (ее читает otelhttp).
// Возвращенную функцию нужно вызвать при остановке: она досылает буфер спанов.
func Setup(ctx context.Context, cfg config.TracingConfig) (func(context.Context) error, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerURL)))
	if err != nil {
		return nil, fmt.Errorf("jaeger exporter: %w", err)
	}

	tp, err := newProvider(ctx, cfg, sdktrace.WithBatcher(exporter))
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Printf("Трассировка включена: %s -> %s (доля %.2f)", cfg.ServiceName, cfg.JaegerURL, sampleRatio(cfg.SampleRatio))
	return tp.Shutdown, nil
}

// newProvider собирает провайдер без регистрации; exporter задается опцией.
func newProvider(ctx context.Context, cfg config.TracingConfig, exporter sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	// Решение родителя сохраняется: трейс, начатый клиентом, не рвется
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.SampleRatio)))

	return sdktrace.NewTracerProvider(
		exporter,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	), nil
}

func sampleRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}
