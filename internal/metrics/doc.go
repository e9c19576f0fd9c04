// Package metrics provides lock-free counters and latency histograms for
// authgate observability.
//
// Counters live in cache-line-padded uint64 slots incremented atomically.
// Histograms use 8 fixed buckets (≤5µs … +Inf). Both are allocation-free
// on the write path.
//
// This package owns metric storage and snapshot creation only. Export
// (Prometheus, OTel) lives in metrics/export/ and reads Snapshot values.
// It performs no I/O and imports no sibling package.
package metrics
