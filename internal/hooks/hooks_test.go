package hooks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/outcomed/internal/config"
)

func TestNewManager(t *testing.T) {
	m := NewManager(nil)
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if got := m.Config().ShellTools; len(got) != 1 || got[0] != "Bash" {
		t.Errorf("default ShellTools = %v, want [Bash]", got)
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	m := NewManager(nil)
	out, err := m.Dispatch(context.Background(), &Input{Event: EventStop})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out != nil {
		t.Errorf("Dispatch = %+v, want nil", out)
	}
}

func TestDispatch_MergesContext(t *testing.T) {
	m := NewManager(nil)
	var calls []string
	m.RegisterHandler(EventPostToolUse, func(context.Context, *Input) (*Output, error) {
		calls = append(calls, "first")
		return contextOutput(EventPostToolUse, "one"), nil
	})
	m.RegisterHandler(EventPostToolUse, func(context.Context, *Input) (*Output, error) {
		calls = append(calls, "second")
		return nil, nil
	})
	m.RegisterHandler(EventPostToolUse, func(context.Context, *Input) (*Output, error) {
		calls = append(calls, "third")
		return contextOutput(EventPostToolUse, "two"), nil
	})

	out, err := m.Dispatch(context.Background(), &Input{Event: EventPostToolUse})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if strings.Join(calls, ",") != "first,second,third" {
		t.Errorf("handlers ran as %v", calls)
	}
	if got := out.Context(); got != "one\ntwo" {
		t.Errorf("Context() = %q, want %q", got, "one\ntwo")
	}
	if out.HookSpecificOutput.HookEventName != EventPostToolUse {
		t.Errorf("HookEventName = %q", out.HookSpecificOutput.HookEventName)
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	m := NewManager(nil)
	boom := errors.New("boom")
	m.RegisterHandler(EventStop, func(context.Context, *Input) (*Output, error) { return nil, boom })

	_, err := m.Dispatch(context.Background(), &Input{Event: EventStop})
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "hook Stop failed") {
		t.Errorf("error %q does not name the event", err)
	}
}

func TestReadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Event
		wantErr bool
	}{
		{"post tool use", `{"session_id":"s1","hook_event_name":"PostToolUse","tool_name":"Bash","tool_input":{"command":"ls"}}`, EventPostToolUse, false},
		{"prompt", `{"session_id":"s1","hook_event_name":"UserPromptSubmit","prompt":"thanks"}`, EventUserPromptSubmit, false},
		{"missing event", `{"session_id":"s1"}`, "", true},
		{"not json", `hello`, "", true},
		{"empty", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ReadInput(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error %v is not ErrInvalidInput", err)
				}
				return
			}
			if in.Event != tt.want {
				t.Errorf("Event = %q, want %q", in.Event, tt.want)
			}
		})
	}
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, nil); err != nil {
		t.Fatalf("WriteOutput(nil) failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("WriteOutput(nil) wrote %q", buf.String())
	}

	if err := WriteOutput(&buf, contextOutput(EventPostToolUse, "note")); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	want := `{"hookSpecificOutput":{"hookEventName":"PostToolUse","additionalContext":"note"}}` + "\n"
	if buf.String() != want {
		t.Errorf("WriteOutput wrote %q, want %q", buf.String(), want)
	}
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"defaults", NewDefaultConfig(), false},
		{"confidence too low", &Config{ShellTools: []string{"Bash"}, MinConfidence: -0.1}, true},
		{"confidence too high", &Config{ShellTools: []string{"Bash"}, MinConfidence: 1.5}, true},
		{"no shell tools", &Config{MinConfidence: 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("HOOKS_MIN_CONFIDENCE", "0.9")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	got, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if got.MinConfidence != 0.9 {
		t.Errorf("MinConfidence = %v, want 0.9", got.MinConfidence)
	}
	if !got.ContextOnFailure {
		t.Error("ContextOnFailure default lost")
	}
}
