// Package otel publishes goTodo engine metrics through an OpenTelemetry
// [metric.Meter].
//
// Each counter becomes an Int64ObservableCounter. The latency histogram is
// flattened into one Int64ObservableGauge per cumulative bucket plus a count
// gauge. A single callback reads the engine snapshot per collection. The
// caller owns the MeterProvider.
package otel
