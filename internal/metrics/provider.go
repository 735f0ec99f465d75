package metrics

import (
	"context"

	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// InitProvider wires a Prometheus-backed MeterProvider and returns it along
// with a Recorder built against it. Unlike the teacher pack's observe
// package, voxbridge has no tracing requirement (spec's Non-goals exclude
// distributed tracing), so only the metrics half of that pattern is
// carried over.
func InitProvider(serviceName string) (*sdkmetric.MeterProvider, *Recorder, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(),
	)
	if err != nil {
		return nil, nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)

	rec, err := New(mp)
	if err != nil {
		return nil, nil, err
	}
	return mp, rec, nil
}

// Shutdown flushes and closes the meter provider; call from main() via defer.
func Shutdown(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	return mp.Shutdown(ctx)
}
