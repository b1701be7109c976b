package main

import (
	"github.com/spf13/cobra"
)

// sessionCmd analyzes a Claude Code transcript
var sessionCmd = &cobra.Command{
	Use:   "session <transcript.jsonl>",
	Short: "Analyze every command and the conversation in a transcript",
	Long: `Parse a Claude Code session transcript, classify the output of every
shell command it ran and aggregate the user's feedback.

Examples:
  outcome session ~/.claude/projects/my-project/5f1c.jsonl
  outcome session --json session.jsonl | jq .verdict`,
	Args: cobra.ExactArgs(1),
	RunE: runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	report, err := l.svc.AnalyzeSession(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	return printReport(cmd, report, renderSession(report))
}
