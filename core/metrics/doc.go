// Package metrics defines the contracts used to observe simulation runs.
// A MetricsSink receives one TimestepRecord per simulated day of every
// replicate; sinks may additionally implement ReplicateRecorder to observe
// replicate lifecycle events. Sinks like PromSink and InfluxSink live in
// infra/metrics and are combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
