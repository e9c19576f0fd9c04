// Package internaldefs holds the shared metric definitions consumed by
// the prometheus and otel exporters. Keeping names, help strings, and
// bucket bounds in one table guarantees the two exporters expose the
// same series.
package internaldefs
