// Package telemetry wires OpenTelemetry tracing and metrics for outcomed.
//
// Spans cover each analysis (outcome.analyze_output, intent.detect,
// intent.analyze_conversation, session.analyze). Metrics count analyses by
// verdict and intent. Export is OTLP over gRPC or HTTP/protobuf and is off
// by default; with it off, tracers and meters are no-ops.
//
// NewTestTelemetry records everything in memory for assertions.
package telemetry
