// Package observe provides the logging, tracing and metrics primitives used
// by the gateway.
//
// Logging is structured JSON through zap. Tracing and metrics are
// OpenTelemetry, exported over stdout, OTLP or a prometheus collector.
// Middleware wraps each gateway operation with a span, operation metrics and
// a completion log line.
package observe
