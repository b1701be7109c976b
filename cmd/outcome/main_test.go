package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/hooks"
	outhttp "github.com/fyrsmithlabs/outcomed/internal/http"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/watch"
)

const (
	jestPass = ` PASS  src/App.test.js
  ✓ renders without crashing (42ms)

Test Suites: 1 passed, 1 total
Tests:       2 passed, 2 total`

	jestFail = ` FAIL  src/App.test.js
  ● renders header › shows title

Tests:       1 failed, 1 total`

	transcriptJSONL = `{"type":"user","sessionId":"sess-3","message":{"role":"user","content":"the build is broken"}}
{"type":"assistant","sessionId":"sess-3","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"npm test"}}]}}
{"type":"user","sessionId":"sess-3","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":" PASS  src/App.test.js\n\nTests:       2 passed, 2 total"}]}}
{"type":"user","sessionId":"sess-3","message":{"role":"user","content":"Perfect, thanks!"}}
`
)

// execute runs the root command with fresh flag state. No config file exists
// under the temporary home, so the built-in defaults apply.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	jsonOutput, verbose = false, false
	analyzeCommand, analyzeExitCode = "", false
	conversationLines = false
	rulesDomain = ""
	watchTranscript = false
	serverURL = "http://127.0.0.1:9191"

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	t.Run("failure from stdin", func(t *testing.T) {
		out, err := execute(t, jestFail, "analyze", "--command", "npm test", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "failure")
		assert.Contains(t, out, string(execution.TestFail))
		assert.Contains(t, out, "command: npm test")
	})

	t.Run("success from file as json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		require.NoError(t, os.WriteFile(path, []byte(jestPass), 0o600))

		out, err := execute(t, "", "analyze", "--json", "-c", "npm test", path)
		require.NoError(t, err)

		var report analysis.ExecutionReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.True(t, report.Verdict.Success)
		assert.Equal(t, "npm test", report.Command)
		assert.NotEmpty(t, report.Signals)
	})

	t.Run("exit code on failure", func(t *testing.T) {
		_, err := execute(t, jestFail, "analyze", "--exit-code")
		assert.ErrorIs(t, err, errFailed)
	})

	t.Run("no signals", func(t *testing.T) {
		out, err := execute(t, "", "analyze")
		require.NoError(t, err)
		assert.Contains(t, out, "no signals")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "analyze", filepath.Join(t.TempDir(), "absent.log"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})
}

func TestIntent(t *testing.T) {
	out, err := execute(t, "", "intent", "--json", "Perfect,", "thanks!")
	require.NoError(t, err)

	var report analysis.IntentReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, intent.Positive, report.Intent)
	assert.NotEmpty(t, report.Hits)

	t.Run("empty phrase is neutral", func(t *testing.T) {
		out, err := execute(t, "", "intent", "--json", "")
		require.NoError(t, err)

		var report analysis.IntentReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, intent.Neutral, report.Intent)
		assert.InDelta(t, intent.NoEvidenceConfidence, report.Confidence, 0.001)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, "this is still broken\n", "intent", "--json")
		require.NoError(t, err)

		var report analysis.IntentReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, intent.Negative, report.Intent)
	})

	t.Run("empty stdin is neutral", func(t *testing.T) {
		out, err := execute(t, "", "intent", "--json")
		require.NoError(t, err)

		var report analysis.IntentReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, intent.Neutral, report.Intent)
	})
}

func TestConversation(t *testing.T) {
	t.Run("json turns", func(t *testing.T) {
		turns := `[{"role":"user","content":"This is broken"},{"role":"assistant","content":"Fixed"},{"role":"user","content":"Perfect, thanks!"}]`
		out, err := execute(t, turns, "conversation", "--json")
		require.NoError(t, err)

		var report analysis.ConversationReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, intent.Positive, report.Overall)
		assert.Len(t, report.Turns, 2)
	})

	t.Run("lines", func(t *testing.T) {
		out, err := execute(t, "This is broken\n\nPerfect, thanks!\n", "conversation", "--lines")
		require.NoError(t, err)
		assert.Contains(t, out, "positive")
		assert.Contains(t, out, "turns")
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := execute(t, `[{"role":"system","content":"hi"}]`, "conversation")
		assert.ErrorIs(t, err, intent.ErrInvalidRole)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := execute(t, `[{`, "conversation")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse turns")
	})
}

func TestParseTurns_Lines(t *testing.T) {
	turns, err := parseTurns([]byte("  one \n\n two\n"), true)
	require.NoError(t, err)
	assert.Equal(t, []intent.Turn{
		{Role: intent.RoleUser, Content: "one"},
		{Role: intent.RoleUser, Content: "two"},
	}, turns)
}

func TestSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sess-3.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(transcriptJSONL), 0o600))

	out, err := execute(t, "", "session", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sess-3")
	assert.Contains(t, out, "1 commands")
	assert.Contains(t, out, "npm test")

	out, err = execute(t, "", "session", "--json", path)
	require.NoError(t, err)
	var report analysis.SessionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Verdict.Success)
	assert.Equal(t, intent.Positive, report.Conversation.Overall)
}

func TestRules(t *testing.T) {
	out, err := execute(t, "", "rules", "--json", "--domain", "test")
	require.NoError(t, err)

	var rules []execution.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.Equal(t, execution.DomainTest, r.Domain)
	}

	_, err = execute(t, "", "rules", "--domain", "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown domain")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(outhttp.HealthResponse{Status: "ok", Version: "1.2.3", Rules: 42})
	}))
	defer srv.Close()

	out, err := execute(t, "", "health", "--server", srv.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "42")
}

func TestHealth_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := execute(t, "", "health", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFollowVerdicts(t *testing.T) {
	jsonOutput = false
	svc := analysis.New()
	defer svc.Close()

	updates := make(chan watch.Snapshot, 4)
	updates <- watch.Snapshot{Content: []byte(jestFail)}
	updates <- watch.Snapshot{Content: []byte(jestFail + "\n")}
	updates <- watch.Snapshot{Content: []byte(jestPass)}
	close(updates)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, followVerdicts(ctx, &buf, updates, outputAnalyzer(svc, "npm test")))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "failure"), "unchanged verdicts are not reprinted")
	assert.Equal(t, 1, strings.Count(out, "success"))
	assert.Less(t, strings.Index(out, "failure"), strings.Index(out, "success"))
}

func TestFollowVerdicts_Transcript(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()
	svc := analysis.New()
	defer svc.Close()

	updates := make(chan watch.Snapshot, 1)
	updates <- watch.Snapshot{Content: []byte(transcriptJSONL)}
	close(updates)

	var buf bytes.Buffer
	require.NoError(t, followVerdicts(context.Background(), &buf, updates, transcriptAnalyzer(svc, "/tmp/sess-3.jsonl")))

	var report analysis.SessionReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "sess-3", report.SessionID)
	assert.True(t, report.Verdict.Success)
}

func TestHook(t *testing.T) {
	payload, err := json.Marshal(map[string]any{
		"session_id":      "s1",
		"hook_event_name": "PostToolUse",
		"tool_name":       "Bash",
		"tool_input":      map[string]string{"command": "npm test"},
		"tool_response":   map[string]any{"stdout": jestFail, "stderr": ""},
	})
	require.NoError(t, err)

	out, err := execute(t, string(payload), "hook")
	require.NoError(t, err)

	var resp hooks.Output
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.HookSpecificOutput)
	assert.Equal(t, hooks.EventPostToolUse, resp.HookSpecificOutput.HookEventName)
	assert.Contains(t, resp.Context(), "npm test")

	out, err = execute(t, `{"hook_event_name":"UserPromptSubmit","prompt":"thanks"}`, "hook")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, `{}`, "hook")
	assert.ErrorIs(t, err, hooks.ErrInvalidInput)
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "intent", "conversation", "session", "watch", "rules", "health", "hook"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
