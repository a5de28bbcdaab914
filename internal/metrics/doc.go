// Package metrics holds the in-process counters for session, gateway, and
// guard outcomes. Counters are fixed-slot atomics addressed by MetricID;
// when disabled every operation is a no-op. Exposition lives under
// metrics/export.
package metrics
