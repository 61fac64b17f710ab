// Package monitoring provides Prometheus metrics for the HTTP surface,
// tool executions, and shell session lifecycle. Metrics are exposed on
// /metrics via the standard promhttp handler.
package monitoring
