package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
)

const jestFail = ` FAIL  src/App.test.js
  ● renders header › shows title

Tests:       1 failed, 1 total`

// recordingAnalyzer delegates to a real service and records session paths.
type recordingAnalyzer struct {
	*analysis.Service
	sessions []string
}

func (r *recordingAnalyzer) AnalyzeSession(ctx context.Context, path string) (analysis.SessionReport, error) {
	r.sessions = append(r.sessions, path)
	return r.Service.AnalyzeSession(ctx, path)
}

func newAnalysisManager(t *testing.T, cfg *Config) (*Manager, *recordingAnalyzer) {
	t.Helper()
	svc := analysis.New()
	t.Cleanup(func() { _ = svc.Close() })
	a := &recordingAnalyzer{Service: svc}
	m := NewManager(cfg)
	RegisterAnalysis(m, a, nil)
	return m, a
}

func postToolUse(t *testing.T, tool, command string, response any) *Input {
	t.Helper()
	in, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := json.Marshal(response)
	if err != nil {
		t.Fatal(err)
	}
	return &Input{
		SessionID:    "s1",
		Event:        EventPostToolUse,
		ToolName:     tool,
		ToolInput:    in,
		ToolResponse: resp,
	}
}

func TestPostToolUse(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		input    func(t *testing.T) *Input
		wantNote string
	}{
		{
			name:     "failure reported",
			input:    func(t *testing.T) *Input { return postToolUse(t, "Bash", "npm test", map[string]any{"stdout": jestFail, "stderr": ""}) },
			wantNote: "`npm test` appears to have failed",
		},
		{
			name:     "string response",
			input:    func(t *testing.T) *Input { return postToolUse(t, "Bash", "npm test", jestFail) },
			wantNote: "test_fail",
		},
		{
			name:  "success is silent",
			input: func(t *testing.T) *Input { return postToolUse(t, "Bash", "npm test", map[string]any{"stdout": "Tests:       2 passed, 2 total"}) },
		},
		{
			name:  "other tools ignored",
			input: func(t *testing.T) *Input { return postToolUse(t, "Read", "npm test", jestFail) },
		},
		{
			name:   "feedback disabled",
			config: &Config{ShellTools: []string{"Bash"}, MinConfidence: 0.5},
			input:  func(t *testing.T) *Input { return postToolUse(t, "Bash", "npm test", jestFail) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newAnalysisManager(t, tt.config)
			out, err := m.Dispatch(context.Background(), tt.input(t))
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			got := out.Context()
			if tt.wantNote == "" {
				if got != "" {
					t.Errorf("unexpected context %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantNote) {
				t.Errorf("context %q does not contain %q", got, tt.wantNote)
			}
		})
	}
}

// weakFailure reports every output as a low-confidence failure.
type weakFailure struct{ recordingAnalyzer }

func (weakFailure) AnalyzeOutput(_ context.Context, _, command string) analysis.ExecutionReport {
	return analysis.ExecutionReport{
		Command: command,
		Signals: []execution.Signal{{Type: execution.BuildFail, Confidence: 0.6, Details: "error"}},
		Verdict: execution.Verdict{Success: false, Confidence: 0.6},
	}
}

func TestPostToolUse_BelowThreshold(t *testing.T) {
	tests := []struct {
		min      float64
		wantNote bool
	}{
		{0.7, false},
		{0.6, true},
		{0.5, true},
	}
	for _, tt := range tests {
		cfg := NewDefaultConfig()
		cfg.MinConfidence = tt.min
		m := NewManager(cfg)
		RegisterAnalysis(m, &weakFailure{}, nil)

		out, err := m.Dispatch(context.Background(), postToolUse(t, "Bash", "make", "error"))
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if got := out.Context() != ""; got != tt.wantNote {
			t.Errorf("min %.1f: reported = %v, want %v", tt.min, got, tt.wantNote)
		}
	}
}

func TestPostToolUse_BadToolInput(t *testing.T) {
	m, _ := newAnalysisManager(t, nil)
	in := &Input{Event: EventPostToolUse, ToolName: "Bash", ToolInput: json.RawMessage(`[1]`)}
	if _, err := m.Dispatch(context.Background(), in); err == nil {
		t.Fatal("expected error for malformed tool_input")
	}
}

func TestUserPrompt(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ContextOnNegative = true
	cfg.MinConfidence = 0
	m, _ := newAnalysisManager(t, cfg)

	out, err := m.Dispatch(context.Background(), &Input{Event: EventUserPromptSubmit, Prompt: "This is broken"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out.Context(), "negative feedback") {
		t.Errorf("context = %q", out.Context())
	}

	out, err = m.Dispatch(context.Background(), &Input{Event: EventUserPromptSubmit, Prompt: "Perfect, thanks!"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out != nil {
		t.Errorf("positive prompt produced %+v", out)
	}
}

func TestUserPrompt_DefaultsSilent(t *testing.T) {
	m, _ := newAnalysisManager(t, nil)
	out, err := m.Dispatch(context.Background(), &Input{Event: EventUserPromptSubmit, Prompt: "This is broken"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out != nil {
		t.Errorf("default config produced %+v", out)
	}
}

func TestSessionDone(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "s1.jsonl")
	transcript := `{"type":"user","sessionId":"s1","message":{"role":"user","content":"Perfect, thanks!"}}` + "\n"
	if err := os.WriteFile(path, []byte(transcript), 0o600); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "other.jsonl")
	if err := os.WriteFile(outside, []byte(transcript), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.TranscriptRoot = root
	m, a := newAnalysisManager(t, cfg)

	for _, ev := range []Event{EventStop, EventSessionEnd} {
		out, err := m.Dispatch(context.Background(), &Input{Event: ev, SessionID: "s1", TranscriptPath: path})
		if err != nil {
			t.Fatalf("%s: Dispatch failed: %v", ev, err)
		}
		if out != nil {
			t.Errorf("%s: session analysis produced output %+v", ev, out)
		}
	}

	// Rejected and missing transcripts are logged, never fatal.
	for _, p := range []string{outside, filepath.Join(root, "missing.jsonl"), ""} {
		if _, err := m.Dispatch(context.Background(), &Input{Event: EventStop, TranscriptPath: p}); err != nil {
			t.Errorf("Dispatch(%q) failed: %v", p, err)
		}
	}

	if len(a.sessions) != 2 {
		t.Fatalf("analyzed %d sessions, want 2: %v", len(a.sessions), a.sessions)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", ``, ""},
		{"string", `"out"`, "out"},
		{"stdout only", `{"stdout":"out"}`, "out"},
		{"stderr only", `{"stderr":"err"}`, "err"},
		{"both", `{"stdout":"out","stderr":"err"}`, "out\nerr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("responseText failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("responseText = %q, want %q", got, tt.want)
			}
		})
	}
}
