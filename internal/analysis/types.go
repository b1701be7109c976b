package analysis

import (
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

// ExecutionReport is the result of analyzing one command's output.
type ExecutionReport struct {
	ID      string             `json:"id"`
	Command string             `json:"command,omitempty"`
	Signals []execution.Signal `json:"signals"`
	Verdict execution.Verdict  `json:"verdict"`

	// Redactions counts secrets removed from signal excerpts.
	Redactions int `json:"redactions,omitempty"`
}

// IntentReport is the result of classifying one phrase.
type IntentReport struct {
	ID string `json:"id"`
	intent.Detail
}

// ConversationReport is the result of aggregating a conversation.
type ConversationReport struct {
	ID string `json:"id"`
	intent.Analysis
}

// CommandReport pairs a transcript command with its analysis. Output is
// omitted; it can be large and may hold secrets.
type CommandReport struct {
	ToolUseID string          `json:"tool_use_id"`
	Command   string          `json:"command"`
	TurnIndex int             `json:"turn_index"`
	Completed bool            `json:"completed"`
	IsError   bool            `json:"is_error,omitempty"`
	Report    ExecutionReport `json:"report"`
}

// SessionReport is the result of analyzing a whole transcript.
type SessionReport struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	Commands     []CommandReport    `json:"commands"`
	Conversation ConversationReport `json:"conversation"`

	// Verdict aggregates every signal from every command.
	Verdict     execution.Verdict `json:"verdict"`
	SignalCount int               `json:"signal_count"`
	ParseErrors int               `json:"parse_errors,omitempty"`
}
