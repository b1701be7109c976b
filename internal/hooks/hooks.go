package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Event names a Claude Code hook event.
type Event string

const (
	// EventPostToolUse fires after a tool call completes.
	EventPostToolUse Event = "PostToolUse"

	// EventUserPromptSubmit fires when the user submits a prompt.
	EventUserPromptSubmit Event = "UserPromptSubmit"

	// EventStop fires when the agent finishes responding.
	EventStop Event = "Stop"

	// EventSessionEnd fires when the session ends.
	EventSessionEnd Event = "SessionEnd"
)

// maxInputSize bounds the hook payload. Tool responses carry full command
// output.
const maxInputSize = 16 << 20

// ErrInvalidInput indicates a payload that is not a hook event.
var ErrInvalidInput = errors.New("invalid hook input")

// Input is the payload Claude Code writes to a hook's stdin. Fields not used
// by an event are empty.
type Input struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	CWD            string `json:"cwd,omitempty"`
	Event          Event  `json:"hook_event_name"`

	// PostToolUse
	ToolName     string          `json:"tool_name,omitempty"`
	ToolInput    json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`

	// UserPromptSubmit
	Prompt string `json:"prompt,omitempty"`
}

// Output is the JSON a hook may print to steer Claude Code.
type Output struct {
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput carries event-scoped fields.
type SpecificOutput struct {
	HookEventName     Event  `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// Context returns the additional context of o, or "" when o is nil.
func (o *Output) Context() string {
	if o == nil || o.HookSpecificOutput == nil {
		return ""
	}
	return o.HookSpecificOutput.AdditionalContext
}

// Handler handles one hook event. It returns nil when it has nothing to say.
type Handler func(ctx context.Context, in *Input) (*Output, error)

// Manager dispatches hook events to handlers.
type Manager struct {
	config   *Config
	handlers map[Event][]Handler
}

// NewManager creates a manager. A nil config uses the defaults.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = NewDefaultConfig()
	}
	return &Manager{
		config:   config,
		handlers: make(map[Event][]Handler),
	}
}

// RegisterHandler registers a handler for an event. Handlers run in
// registration order.
func (m *Manager) RegisterHandler(event Event, handler Handler) {
	m.handlers[event] = append(m.handlers[event], handler)
}

// Dispatch runs every handler for in.Event and merges their additional
// context. Events without handlers yield a nil output.
func (m *Manager) Dispatch(ctx context.Context, in *Input) (*Output, error) {
	handlers, ok := m.handlers[in.Event]
	if !ok {
		return nil, nil
	}

	var notes []string
	for _, handler := range handlers {
		out, err := handler(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("hook %s failed: %w", in.Event, err)
		}
		if c := out.Context(); c != "" {
			notes = append(notes, c)
		}
	}
	if len(notes) == 0 {
		return nil, nil
	}
	return &Output{HookSpecificOutput: &SpecificOutput{
		HookEventName:     in.Event,
		AdditionalContext: strings.Join(notes, "\n"),
	}}, nil
}

// Config returns the hook configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// ReadInput decodes a hook payload from r.
func ReadInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading hook input: %w", err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidInput, maxInputSize)
	}

	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Event == "" {
		return nil, fmt.Errorf("%w: hook_event_name is required", ErrInvalidInput)
	}
	return &in, nil
}

// WriteOutput encodes out to w. A nil output writes nothing, which Claude
// Code treats as success with no feedback.
func WriteOutput(w io.Writer, out *Output) error {
	if out == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(out)
}
