package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/sanitize"
)

var errInvalidArgument = errors.New("invalid argument")

// addTool registers a typed tool with the SDK and the search registry and
// wraps its handler with metrics and failure logging.
func addTool[In, Out any](s *Server, meta ToolMetadata, handler func(context.Context, In) (*mcp.CallToolResult, Out, error)) error {
	if err := s.registry.Register(&meta); err != nil {
		return err
	}
	name := meta.Name
	mcp.AddTool(s.mcp, &mcp.Tool{Name: name, Description: meta.Description},
		func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
			start := time.Now()
			s.metrics.IncrementActive(ctx, name)
			res, out, err := handler(ctx, in)
			s.metrics.DecrementActive(ctx, name)
			s.metrics.RecordInvocation(ctx, name, time.Since(start), err)
			if err != nil {
				s.logger.Warn(ctx, "tool call failed", zap.String("tool", name), zap.Error(err))
			}
			return res, out, err
		})
	return nil
}

func (s *Server) registerTools() error {
	return errors.Join(
		s.registerExecutionTools(),
		s.registerIntentTools(),
		s.registerSessionTools(),
		s.registerSearchTools(),
	)
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func verdictText(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// ===== EXECUTION TOOLS =====

type signalOutput struct {
	Type       string  `json:"signal_type" jsonschema:"Signal type, e.g. test_fail or build_success"`
	Confidence float64 `json:"confidence" jsonschema:"Confidence in [0, 1]"`
	Details    string  `json:"details" jsonschema:"Matched text"`
	Context    string  `json:"context,omitempty" jsonschema:"Line the match was found on, secrets redacted"`
	Rule       string  `json:"rule" jsonschema:"Rule that produced the signal"`
}

func toSignalOutputs(signals []execution.Signal) []signalOutput {
	out := make([]signalOutput, len(signals))
	for i, sig := range signals {
		out[i] = signalOutput{
			Type:       string(sig.Type),
			Confidence: sig.Confidence,
			Details:    sig.Details,
			Context:    sig.Context,
			Rule:       sig.Rule,
		}
	}
	return out
}

type analyzeOutputInput struct {
	Output  string `json:"output" jsonschema:"Captured stdout and stderr of the command"`
	Command string `json:"command,omitempty" jsonschema:"Command line that produced the output, used as a hint"`
}

type analyzeOutputOutput struct {
	ID         string         `json:"id" jsonschema:"Analysis ID"`
	IsSuccess  bool           `json:"is_success" jsonschema:"Overall verdict"`
	Confidence float64        `json:"confidence" jsonschema:"Verdict confidence in [0, 1]"`
	Signals    []signalOutput `json:"signals" jsonschema:"Evidence extracted from the output"`
	Redactions int            `json:"redactions,omitempty" jsonschema:"Secrets removed from excerpts"`
}

type listRulesInput struct {
	Domain string `json:"domain,omitempty" jsonschema:"Only list rules of this domain (test, typecheck, lint, install, server, build, generic)"`
}

type ruleOutput struct {
	Name       string  `json:"name"`
	Domain     string  `json:"domain"`
	Kind       string  `json:"kind"`
	Pattern    string  `json:"pattern"`
	SignalType string  `json:"signal_type,omitempty"`
	Failure    bool    `json:"failure,omitempty"`
	Confidence float64 `json:"confidence"`
}

type listRulesOutput struct {
	Rules []ruleOutput `json:"rules" jsonschema:"Execution rules in evaluation order"`
	Count int          `json:"count" jsonschema:"Number of rules returned"`
}

func (s *Server) registerExecutionTools() error {
	return errors.Join(
		addTool(s, ToolMetadata{
			Name:        "analyze_output",
			Description: "Classify a shell command's output as success or failure from test, build, lint, typecheck, install and server evidence",
			Category:    CategoryExecution,
			Keywords:    []string{"build", "test", "lint", "verdict", "signals"},
		}, func(ctx context.Context, args analyzeOutputInput) (*mcp.CallToolResult, analyzeOutputOutput, error) {
			report := s.svc.AnalyzeOutput(ctx, args.Output, args.Command)
			out := analyzeOutputOutput{
				ID:         report.ID,
				IsSuccess:  report.Verdict.Success,
				Confidence: report.Verdict.Confidence,
				Signals:    toSignalOutputs(report.Signals),
				Redactions: report.Redactions,
			}
			return textResult("%s (confidence %.2f, %d signals)",
				verdictText(out.IsSuccess), out.Confidence, len(out.Signals)), out, nil
		}),

		addTool(s, ToolMetadata{
			Name:        "list_rules",
			Description: "List the execution pattern rules used to extract signals",
			Category:    CategoryExecution,
			Keywords:    []string{"patterns", "library"},
		}, func(_ context.Context, args listRulesInput) (*mcp.CallToolResult, listRulesOutput, error) {
			if args.Domain != "" && !execution.Domain(args.Domain).IsValid() {
				return nil, listRulesOutput{}, fmt.Errorf("%w: unknown domain %q", errInvalidArgument, args.Domain)
			}
			rules := s.svc.Rules()
			out := listRulesOutput{Rules: make([]ruleOutput, 0, len(rules))}
			for _, r := range rules {
				if args.Domain != "" && string(r.Domain) != args.Domain {
					continue
				}
				out.Rules = append(out.Rules, ruleOutput{
					Name:       r.Name,
					Domain:     string(r.Domain),
					Kind:       r.Kind.String(),
					Pattern:    r.Pattern,
					SignalType: string(r.Type),
					Failure:    r.Failure,
					Confidence: r.Confidence,
				})
			}
			out.Count = len(out.Rules)
			return textResult("%d rules", out.Count), out, nil
		}),
	)
}

// ===== INTENT TOOLS =====

type detectIntentInput struct {
	Phrase string `json:"phrase" jsonschema:"Utterance to classify"`
}

type hitOutput struct {
	Phrase  string  `json:"phrase"`
	Intent  string  `json:"intent"`
	Weight  float64 `json:"weight"`
	Negated bool    `json:"negated,omitempty"`
}

type detectIntentOutput struct {
	ID         string      `json:"id" jsonschema:"Analysis ID"`
	Intent     string      `json:"intent" jsonschema:"positive, negative or neutral"`
	Confidence float64     `json:"confidence" jsonschema:"Confidence in [0, 1]"`
	Hits       []hitOutput `json:"hits" jsonschema:"Lexicon cues found in the phrase"`
}

type turnInput struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"Message text"`
	Index   int    `json:"index,omitempty" jsonschema:"Position in the conversation, higher is more recent"`
}

type analyzeConversationInput struct {
	Turns     []turnInput `json:"turns" jsonschema:"Conversation turns"`
	AutoIndex bool        `json:"auto_index,omitempty" jsonschema:"Number turns by their position instead of the index field"`
}

type analyzeConversationOutput struct {
	ID            string             `json:"id" jsonschema:"Analysis ID"`
	OverallIntent string             `json:"overall_intent" jsonschema:"positive, negative or neutral"`
	Confidence    float64            `json:"confidence" jsonschema:"Confidence in [0, 1]"`
	Scores        map[string]float64 `json:"scores" jsonschema:"Weighted score per intent"`
	ScoredTurns   int                `json:"scored_turns" jsonschema:"Number of user turns that contributed"`
}

func toConversationOutput(r analysis.ConversationReport) analyzeConversationOutput {
	scores := make(map[string]float64, len(r.Scores))
	for k, v := range r.Scores {
		scores[string(k)] = v
	}
	return analyzeConversationOutput{
		ID:            r.ID,
		OverallIntent: string(r.Overall),
		Confidence:    r.Confidence,
		Scores:        scores,
		ScoredTurns:   len(r.Turns),
	}
}

func (s *Server) registerIntentTools() error {
	return errors.Join(
		addTool(s, ToolMetadata{
			Name:        "detect_intent",
			Description: "Classify a single human utterance as positive, negative or neutral feedback",
			Category:    CategoryIntent,
			Keywords:    []string{"sentiment", "feedback", "phrase"},
		}, func(ctx context.Context, args detectIntentInput) (*mcp.CallToolResult, detectIntentOutput, error) {
			report := s.svc.DetectIntent(ctx, args.Phrase)
			out := detectIntentOutput{
				ID:         report.ID,
				Intent:     string(report.Intent),
				Confidence: report.Confidence,
				Hits:       make([]hitOutput, len(report.Hits)),
			}
			for i, h := range report.Hits {
				out.Hits[i] = hitOutput{Phrase: h.Phrase, Intent: string(h.Intent), Weight: h.Weight, Negated: h.Negated}
			}
			return textResult("%s (confidence %.2f)", out.Intent, out.Confidence), out, nil
		}),

		addTool(s, ToolMetadata{
			Name:        "analyze_conversation",
			Description: "Aggregate user intent over a conversation, weighting recent turns more heavily",
			Category:    CategoryIntent,
			Keywords:    []string{"sentiment", "turns", "satisfaction"},
		}, func(ctx context.Context, args analyzeConversationInput) (*mcp.CallToolResult, analyzeConversationOutput, error) {
			turns := make([]intent.Turn, len(args.Turns))
			for i, t := range args.Turns {
				turns[i] = intent.Turn{Role: intent.Role(t.Role), Content: t.Content, Index: t.Index}
			}
			if args.AutoIndex {
				turns = intent.Indexed(turns)
			}
			report, err := s.svc.AnalyzeConversation(ctx, turns)
			if err != nil {
				return nil, analyzeConversationOutput{}, err
			}
			out := toConversationOutput(report)
			return textResult("%s (confidence %.2f over %d turns)",
				out.OverallIntent, out.Confidence, out.ScoredTurns), out, nil
		}),
	)
}

// ===== SESSION TOOLS =====

type analyzeSessionInput struct {
	Path string `json:"path" jsonschema:"Path to a Claude Code session transcript (.jsonl)"`
}

type commandOutput struct {
	ToolUseID  string         `json:"tool_use_id"`
	Command    string         `json:"command"`
	Completed  bool           `json:"completed"`
	IsSuccess  bool           `json:"is_success"`
	Confidence float64        `json:"confidence"`
	Signals    []signalOutput `json:"signals"`
}

type analyzeSessionOutput struct {
	ID           string                    `json:"id" jsonschema:"Analysis ID"`
	SessionID    string                    `json:"session_id" jsonschema:"Transcript session ID"`
	IsSuccess    bool                      `json:"is_success" jsonschema:"Verdict over every command's signals"`
	Confidence   float64                   `json:"confidence" jsonschema:"Verdict confidence in [0, 1]"`
	SignalCount  int                       `json:"signal_count" jsonschema:"Signals across all commands"`
	Commands     []commandOutput           `json:"commands" jsonschema:"Per-command results"`
	Conversation analyzeConversationOutput `json:"conversation" jsonschema:"Intent of the user's turns"`
	ParseErrors  int                       `json:"parse_errors,omitempty" jsonschema:"Malformed transcript lines skipped"`
}

func (s *Server) registerSessionTools() error {
	return addTool(s, ToolMetadata{
		Name:        "analyze_session",
		Description: "Analyze a Claude Code session transcript: every shell command's outcome plus the user's overall intent",
		Category:    CategorySession,
		Keywords:    []string{"transcript", "jsonl", "claude"},
	}, func(ctx context.Context, args analyzeSessionInput) (*mcp.CallToolResult, analyzeSessionOutput, error) {
		path, err := sanitize.ValidateTranscriptPath(args.Path, s.transcriptRoot)
		if err != nil {
			return nil, analyzeSessionOutput{}, fmt.Errorf("invalid path: %w", err)
		}
		report, err := s.svc.AnalyzeSession(ctx, path)
		if err != nil {
			return nil, analyzeSessionOutput{}, err
		}

		out := analyzeSessionOutput{
			ID:           report.ID,
			SessionID:    report.SessionID,
			IsSuccess:    report.Verdict.Success,
			Confidence:   report.Verdict.Confidence,
			SignalCount:  report.SignalCount,
			Commands:     make([]commandOutput, len(report.Commands)),
			Conversation: toConversationOutput(report.Conversation),
			ParseErrors:  report.ParseErrors,
		}
		for i, c := range report.Commands {
			out.Commands[i] = commandOutput{
				ToolUseID:  c.ToolUseID,
				Command:    c.Command,
				Completed:  c.Completed,
				IsSuccess:  c.Report.Verdict.Success,
				Confidence: c.Report.Verdict.Confidence,
				Signals:    toSignalOutputs(c.Report.Signals),
			}
		}
		return textResult("session %s: %s (confidence %.2f), %d commands, intent %s",
			out.SessionID, verdictText(out.IsSuccess), out.Confidence,
			len(out.Commands), out.Conversation.OverallIntent), out, nil
	})
}

// ===== SEARCH TOOLS =====

type toolSearchInput struct {
	Query    string `json:"query" jsonschema:"Substring or regular expression matched against tool names, descriptions and keywords"`
	Category string `json:"category,omitempty" jsonschema:"Limit to one category (execution, intent, session, search)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum results (default 5)"`
}

type toolMatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Score       int    `json:"score"`
	MatchReason string `json:"match_reason"`
}

type toolSearchOutput struct {
	Query      string      `json:"query" jsonschema:"Query used"`
	Results    []toolMatch `json:"results" jsonschema:"Matching tools, best first"`
	Count      int         `json:"count" jsonschema:"Number of results"`
	TotalTools int         `json:"total_tools" jsonschema:"Number of registered tools"`
}

func (s *Server) registerSearchTools() error {
	return addTool(s, ToolMetadata{
		Name:        "tool_search",
		Description: "Search the available outcomed tools by name, description or keyword",
		Category:    CategorySearch,
		Keywords:    []string{"discover", "help"},
	}, func(_ context.Context, args toolSearchInput) (*mcp.CallToolResult, toolSearchOutput, error) {
		if args.Query == "" {
			return nil, toolSearchOutput{}, fmt.Errorf("%w: query is required", errInvalidArgument)
		}
		limit := args.Limit
		if limit <= 0 {
			limit = 5
		}

		matches := s.registry.Search(args.Query, ToolCategory(args.Category))
		if len(matches) > limit {
			matches = matches[:limit]
		}
		out := toolSearchOutput{
			Query:      args.Query,
			Results:    make([]toolMatch, len(matches)),
			Count:      len(matches),
			TotalTools: s.registry.Count(),
		}
		names := make([]string, len(matches))
		for i, m := range matches {
			out.Results[i] = toolMatch{
				Name:        m.Tool.Name,
				Description: m.Tool.Description,
				Category:    string(m.Tool.Category),
				Score:       m.Score,
				MatchReason: m.MatchReason,
			}
			names[i] = m.Tool.Name
		}
		if len(names) == 0 {
			return textResult("No tools found matching: %s", args.Query), out, nil
		}
		return textResult("Found %d tool(s) for %q: %s", len(names), args.Query, strings.Join(names, ", ")), out, nil
	})
}
