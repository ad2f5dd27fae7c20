// Package internaldefs holds the metric names, help strings, and latency
// bucket bounds shared by the Prometheus and OTel exporters, so both emit
// identical series.
//
// It performs no I/O.
package internaldefs
