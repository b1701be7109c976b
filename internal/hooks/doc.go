// Package hooks runs outcome analysis from Claude Code hooks.
//
// Claude Code invokes a hook command with a JSON payload on stdin. A Manager
// decodes it, dispatches it to the handlers registered for its event and
// writes their combined response to stdout:
//
//	PostToolUse       classify shell command output
//	UserPromptSubmit  classify the user's prompt as feedback
//	Stop, SessionEnd  analyze the whole session transcript
//
// With context_on_failure set, a confident failure verdict is fed back to the
// model as additional context.
package hooks
