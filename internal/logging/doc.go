// Package logging provides zap-based structured logging with context
// correlation and an optional OpenTelemetry bridge.
//
// Every method takes a context. Trace and span IDs, the analysis ID and the
// session ID found there are attached to the entry:
//
//	ctx = logging.WithAnalysisID(ctx, id)
//	logger.Info(ctx, "output analyzed", zap.Bool("is_success", r.IsSuccess))
//
// Output goes to stdout or stderr (stderr when serving MCP over stdio) and
// optionally to an OTEL log provider. A TraceLevel below Debug carries
// per-rule match details. Entries below error are sampled; errors never are.
//
// Secrets are redacted twice: by field name and value pattern in the
// encoder, and explicitly with RedactedString or Secret.
package logging
