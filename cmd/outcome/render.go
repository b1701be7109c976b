package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	outhttp "github.com/fyrsmithlabs/outcomed/internal/http"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)
)

// printReport writes v as JSON with --json, text otherwise.
func printReport(cmd *cobra.Command, v any, text string) error {
	return writeReport(cmd.OutOrStdout(), v, text)
}

func writeReport(w io.Writer, v any, text string) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func verdictLabel(v execution.Verdict) string {
	if v.Success {
		return successStyle.Render("✔ success")
	}
	return failureStyle.Render("✘ failure")
}

func intentLabel(i intent.Intent) string {
	switch i {
	case intent.Positive:
		return successStyle.Render(string(i))
	case intent.Negative:
		return failureStyle.Render(string(i))
	}
	return neutralStyle.Render(string(i))
}

func percent(c float64) string {
	return dimStyle.Render(fmt.Sprintf("(%.0f%%)", c*100))
}

func renderExecution(r analysis.ExecutionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", verdictLabel(r.Verdict), percent(r.Verdict.Confidence))
	if r.Command != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("command:"), r.Command)
	}
	if len(r.Signals) == 0 {
		b.WriteString(dimStyle.Render("no signals"))
		return b.String()
	}
	for _, s := range r.Signals {
		fmt.Fprintf(&b, "  %-22s %s %s\n", s.Type, percent(s.Confidence), s.Details)
	}
	if r.Redactions > 0 {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%d secret(s) redacted", r.Redactions)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderIntent(r analysis.IntentReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", intentLabel(r.Intent), percent(r.Confidence))
	for _, h := range r.Hits {
		note := ""
		switch {
		case h.Negated:
			note = " (negated)"
		case h.Idiom:
			note = " (idiom)"
		}
		fmt.Fprintf(&b, "\n  %q %s%s", h.Phrase, h.Intent, dimStyle.Render(note))
	}
	return b.String()
}

func renderConversation(r analysis.ConversationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", intentLabel(r.Overall), percent(r.Confidence))
	for _, i := range []intent.Intent{intent.Positive, intent.Negative, intent.Neutral} {
		fmt.Fprintf(&b, "\n  %s %.2f", labelStyle.Render(fmt.Sprintf("%-8s", i)), r.Scores[i])
	}
	if len(r.Turns) > 0 {
		fmt.Fprintf(&b, "\n%s", titleStyle.Render("turns"))
		for _, t := range r.Turns {
			fmt.Fprintf(&b, "\n  #%-3d %-8s %s weight %.2f", t.Index, t.Intent, percent(t.Confidence), t.Weight)
		}
	}
	return b.String()
}

func renderSession(r analysis.SessionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("session"), r.SessionID)
	fmt.Fprintf(&b, "%s %s %s\n", labelStyle.Render("verdict:"), verdictLabel(r.Verdict), percent(r.Verdict.Confidence))
	fmt.Fprintf(&b, "%s %s %s\n", labelStyle.Render("intent: "), intentLabel(r.Conversation.Overall), percent(r.Conversation.Confidence))
	fmt.Fprintf(&b, "%s %d commands, %d signals", labelStyle.Render("seen:   "), len(r.Commands), r.SignalCount)
	if r.ParseErrors > 0 {
		fmt.Fprintf(&b, ", %d unreadable lines", r.ParseErrors)
	}
	for _, c := range r.Commands {
		status := verdictLabel(c.Report.Verdict)
		if !c.Completed {
			status = dimStyle.Render("… running")
		}
		fmt.Fprintf(&b, "\n  %s %s", status, c.Command)
	}
	return b.String()
}

func renderRules(rules []execution.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", titleStyle.Render(fmt.Sprintf("%d rules", len(rules))))
	for _, r := range rules {
		outcome := string(r.Type)
		if outcome == "" {
			outcome = "success"
			if r.Failure {
				outcome = "failure"
			}
		}
		fmt.Fprintf(&b, "\n  %-10s %-36s %-22s %.2f", r.Domain, r.Name, outcome, r.Confidence)
	}
	return b.String()
}

func renderHealth(h outhttp.HealthResponse) string {
	status := successStyle.Render(h.Status)
	if h.Status != "ok" {
		status = failureStyle.Render(h.Status)
	}
	return fmt.Sprintf("%s %s\n%s %s\n%s %d",
		labelStyle.Render("Server Status:"), status,
		labelStyle.Render("Version:      "), h.Version,
		labelStyle.Render("Rules:        "), h.Rules)
}
