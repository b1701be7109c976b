// Package analysis is the service facade over the execution and intent
// engines. Every surface (HTTP, MCP, CLI) calls a Service, which adds what the
// pure engines leave out: analysis IDs, structured logs, spans, Prometheus
// counters, secret redaction of excerpts and NATS events.
//
// Engine results pass through unchanged apart from redaction; a Service never
// alters a verdict or an intent score.
package analysis
