// Package otel bridges engine metrics to an OpenTelemetry meter using
// observable instruments: values are pulled from a snapshot inside one
// registered callback at collection time rather than pushed per event.
package otel
