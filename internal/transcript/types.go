// Package transcript reads Claude Code session transcripts (JSONL) and
// extracts what the analyzers need: the conversation turns and every shell
// command paired with the output it produced.
package transcript

import (
	"time"

	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

// Session is the analyzable content of one transcript file.
type Session struct {
	ID       string        `json:"session_id"`
	Turns    []intent.Turn `json:"turns"`
	Commands []Command     `json:"commands"`

	// ErrorCount counts lines that could not be parsed. At most maxErrors of
	// them are kept in Errors.
	ErrorCount int          `json:"error_count,omitempty"`
	Errors     []ParseError `json:"errors,omitempty"`
}

// UserTurns returns the number of user turns in the session.
func (s *Session) UserTurns() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == intent.RoleUser {
			n++
		}
	}
	return n
}

// Command is a shell tool invocation and its result.
type Command struct {
	ToolUseID   string    `json:"tool_use_id"`
	Command     string    `json:"command"`
	Description string    `json:"description,omitempty"`
	Output      string    `json:"output,omitempty"`
	IsError     bool      `json:"is_error,omitempty"`
	Completed   bool      `json:"completed"`
	Timestamp   time.Time `json:"timestamp,omitempty"`

	// TurnIndex is the Index of the latest turn before the command was
	// issued, or -1 when it precedes every turn.
	TurnIndex int `json:"turn_index"`
}

// ParseError is a transcript line that could not be read.
type ParseError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}
