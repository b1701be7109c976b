// Package secrets scrubs credentials out of command output excerpts before
// they are returned or published. Detection uses the gitleaks default rule
// set; an optional TOML allowlist suppresses known false positives.
//
// Matches are replaced with [REDACTED:<rule-id>] markers. Findings never
// carry the secret itself.
package secrets
