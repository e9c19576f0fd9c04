// Package prometheus exposes engine metrics as a prometheus.Collector.
//
// [NewCollector] wraps any [Source] (normally the engine) and emits
// const metrics from a fresh snapshot on every scrape. [Handler] wires
// the collector into a private registry behind promhttp.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
