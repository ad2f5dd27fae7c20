package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	otelexport "github.com/MrEthical07/goTodo/metrics/export/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// slogMetricExporter writes every collected OpenTelemetry data point as one
// structured log record.
type slogMetricExporter struct {
	logger *slog.Logger
}

func (e *slogMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

func (e *slogMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

func (e *slogMetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					e.logger.LogAttrs(ctx, slog.LevelInfo, "metric", slog.String("name", m.Name), slog.Int64("value", dp.Value))
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					e.logger.LogAttrs(ctx, slog.LevelInfo, "metric", slog.String("name", m.Name), slog.Int64("value", dp.Value))
				}
			}
		}
	}
	return nil
}

func (e *slogMetricExporter) ForceFlush(context.Context) error { return nil }

func (e *slogMetricExporter) Shutdown(context.Context) error { return nil }

// startOTel registers the engine's counters on a meter provider that exports
// through logger every interval. The returned stop func flushes once more
// and releases the provider.
func startOTel(source otelexport.MetricsSource, logger *slog.Logger, interval time.Duration) (func(context.Context) error, error) {
	reader := sdkmetric.NewPeriodicReader(&slogMetricExporter{logger: logger}, sdkmetric.WithInterval(interval))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exporter, err := otelexport.NewOTelExporterFromSource(provider.Meter("github.com/MrEthical07/goTodo"), source)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("otel exporter: %w", err)
	}

	return func(ctx context.Context) error {
		_ = provider.ForceFlush(ctx)
		if err := exporter.Close(); err != nil {
			return err
		}
		return provider.Shutdown(ctx)
	}, nil
}
