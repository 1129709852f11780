// Package metrics defines interfaces and event types for collecting
// simulation metrics. Sinks like PromSink and InfluxSink record task
// outcomes, plan results and robot state and can be combined with
// NewMultiSink. Optional recorder interfaces let a sink opt into the
// streams it can represent.
package metrics
