package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
	"github.com/fyrsmithlabs/outcomed/internal/sanitize"
)

// Analyzer is the subset of analysis.Service the hooks use.
type Analyzer interface {
	AnalyzeOutput(ctx context.Context, output, command string) analysis.ExecutionReport
	DetectIntent(ctx context.Context, phrase string) analysis.IntentReport
	AnalyzeSession(ctx context.Context, path string) (analysis.SessionReport, error)
}

// RegisterAnalysis wires the analyzer into m for every supported event.
func RegisterAnalysis(m *Manager, a Analyzer, logger *logging.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &analysisHandlers{cfg: m.Config(), analyzer: a, logger: logger.Named("hooks")}
	m.RegisterHandler(EventPostToolUse, h.postToolUse)
	m.RegisterHandler(EventUserPromptSubmit, h.userPrompt)
	m.RegisterHandler(EventStop, h.sessionDone)
	m.RegisterHandler(EventSessionEnd, h.sessionDone)
}

type analysisHandlers struct {
	cfg      *Config
	analyzer Analyzer
	logger   *logging.Logger
}

type shellInput struct {
	Command string `json:"command"`
}

type shellResponse struct {
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	Interrupted bool   `json:"interrupted"`
}

func (h *analysisHandlers) postToolUse(ctx context.Context, in *Input) (*Output, error) {
	if !h.cfg.isShellTool(in.ToolName) {
		return nil, nil
	}

	var input shellInput
	if len(in.ToolInput) > 0 {
		if err := json.Unmarshal(in.ToolInput, &input); err != nil {
			return nil, fmt.Errorf("%w: tool_input: %v", ErrInvalidInput, err)
		}
	}
	output, err := responseText(in.ToolResponse)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithSessionID(ctx, sanitize.Identifier(in.SessionID))
	report := h.analyzer.AnalyzeOutput(ctx, output, input.Command)
	h.logger.Debug(ctx, "tool output analyzed",
		zap.String("tool", in.ToolName),
		zap.Bool("is_success", report.Verdict.Success),
		zap.Float64("confidence", report.Verdict.Confidence),
	)

	if !h.cfg.ContextOnFailure || report.Verdict.Success || len(report.Signals) == 0 ||
		report.Verdict.Confidence < h.cfg.MinConfidence {
		return nil, nil
	}
	return contextOutput(EventPostToolUse, failureNote(input.Command, report)), nil
}

func (h *analysisHandlers) userPrompt(ctx context.Context, in *Input) (*Output, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, nil
	}
	ctx = logging.WithSessionID(ctx, sanitize.Identifier(in.SessionID))
	report := h.analyzer.DetectIntent(ctx, in.Prompt)

	if !h.cfg.ContextOnNegative || report.Intent != intent.Negative ||
		report.Confidence < h.cfg.MinConfidence {
		return nil, nil
	}
	return contextOutput(EventUserPromptSubmit, fmt.Sprintf(
		"outcome: the user's message reads as negative feedback (%.0f%% confidence); the last change may not have worked.",
		report.Confidence*100)), nil
}

// sessionDone analyzes the full transcript so its verdict and intent are
// logged and published. It never blocks the session on a bad transcript.
func (h *analysisHandlers) sessionDone(ctx context.Context, in *Input) (*Output, error) {
	if in.TranscriptPath == "" {
		return nil, nil
	}
	ctx = logging.WithSessionID(ctx, sanitize.Identifier(in.SessionID))

	path, err := sanitize.ValidateTranscriptPath(in.TranscriptPath, h.cfg.TranscriptRoot)
	if err != nil {
		h.logger.Warn(ctx, "transcript rejected", zap.Error(err))
		return nil, nil
	}
	report, err := h.analyzer.AnalyzeSession(ctx, path)
	if err != nil {
		h.logger.Warn(ctx, "session analysis failed", zap.Error(err))
		return nil, nil
	}
	h.logger.Info(ctx, "session analyzed",
		zap.String("event", string(in.Event)),
		zap.Int("commands", len(report.Commands)),
		zap.Bool("is_success", report.Verdict.Success),
		zap.String("intent", string(report.Conversation.Overall)),
	)
	return nil, nil
}

// responseText flattens a shell tool response. Claude Code sends an object
// with stdout and stderr; plain strings are accepted too.
func responseText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var resp shellResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: tool_response: %v", ErrInvalidInput, err)
	}
	switch {
	case resp.Stderr == "":
		return resp.Stdout, nil
	case resp.Stdout == "":
		return resp.Stderr, nil
	}
	return resp.Stdout + "\n" + resp.Stderr, nil
}

func failureNote(command string, report analysis.ExecutionReport) string {
	failures, _ := execution.Partition(report.Signals)
	var b strings.Builder
	b.WriteString("outcome: ")
	if command != "" {
		fmt.Fprintf(&b, "`%s` ", command)
	}
	fmt.Fprintf(&b, "appears to have failed (%.0f%% confidence)", report.Verdict.Confidence*100)
	if len(failures) > 0 {
		fmt.Fprintf(&b, ": %s %q", failures[0].Type, failures[0].Details)
	}
	b.WriteString(".")
	return b.String()
}

func contextOutput(event Event, note string) *Output {
	return &Output{HookSpecificOutput: &SpecificOutput{
		HookEventName:     event,
		AdditionalContext: note,
	}}
}
