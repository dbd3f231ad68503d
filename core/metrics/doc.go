// Package metrics defines the observability surface of the delivery engine.
// Sinks record deliveries and may optionally implement the recorder
// interfaces for robot state changes, allocations and per-tick snapshots.
// Sinks are created from configuration through a factory registry and are
// combined with NewMultiSink when several are configured.
package metrics
