// Package execution classifies captured command output into typed outcome
// signals and reduces them to a single success verdict.
//
// # Rules
//
// A Library holds an ordered rule table per domain (test, typecheck, lint,
// install, server, build and generic). Each Rule maps a pattern to a SignalType
// and a base confidence. Rules come in four kinds:
//   - KindLiteral: plain substring, case-insensitive unless CaseSensitive is set
//   - KindRegex: regular expression
//   - KindCount: regular expression whose first capture is an integer that
//     must be zero or non-zero, so "0 errors" never satisfies a failure rule
//   - KindSequence: an anchor that must be followed later by a confirmation
//
// Within a domain the first rule that matches decides the signal type. Any
// line whose text also matches a rule's Exclude pattern is ignored by that rule,
// and a rule with an Unless pattern is silent for any output containing it.
//
// # Extraction
//
// Extractor.AnalyzeOutput walks the domains in precedence order and emits at
// most one Signal per domain. Lines used as evidence by one domain are claimed
// and cannot be reused by a later domain, so the same text never produces two
// signals. Corroborating lines of the same signal type raise confidence, and a
// command that names the domain ("pytest", "npm run lint") adds a small prior.
// Signals are returned in the order their evidence appears in the output.
//
// ANSI escape sequences are ignored by matching. Offsets refer to the original
// text.
//
// # Verdicts
//
// CalculateOverallSuccess treats any failure signal as authoritative:
//
//	signals := extractor.AnalyzeOutput(output, "npm test")
//	verdict := execution.CalculateOverallSuccess(signals)
//
// The default library is built once and shared. Libraries are immutable after
// construction and safe for concurrent use.
package execution
