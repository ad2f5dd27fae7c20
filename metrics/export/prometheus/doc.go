// Package prometheus renders goTodo engine metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps an engine and exposes an [http.Handler] for
// GET /metrics. Counters are named gotodo_*_total; the only histogram is
// gotodo_authenticate_latency_seconds. Nothing is registered globally.
package prometheus
