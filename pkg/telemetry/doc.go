// Package telemetry provides structured logging, Prometheus metrics, and
// OpenTelemetry tracing for the strukt engine.
//
// Logging is built on zerolog with field helpers for the engine's common
// identifiers (document path, run ID, operation). Metrics cover parsing,
// the parse cache, planned and applied operations, and audit drift counts.
// Tracing is optional and exports to stdout when enabled.
package telemetry
