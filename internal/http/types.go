package http

import (
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

// OutputRequest is the body of POST /api/v1/output.
type OutputRequest struct {
	Output  string `json:"output"`
	Command string `json:"command,omitempty"`
}

// IntentRequest is the body of POST /api/v1/intent.
type IntentRequest struct {
	Phrase string `json:"phrase"`
}

// ConversationRequest is the body of POST /api/v1/conversation. Turns
// without an index are numbered by position when AutoIndex is set.
type ConversationRequest struct {
	Turns     []intent.Turn `json:"turns"`
	AutoIndex bool          `json:"auto_index,omitempty"`
}

// RulesResponse is the body of GET /api/v1/rules.
type RulesResponse struct {
	Count int              `json:"count"`
	Rules []execution.Rule `json:"rules"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
