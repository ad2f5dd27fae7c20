// Package metrics provides lock-free counters and one latency histogram for
// the engine. Counters live in cache-line padded slots and are updated with
// sync/atomic; export (Prometheus text, OpenTelemetry) is done by
// metrics/export and only reads snapshots.
package metrics
