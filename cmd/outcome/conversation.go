package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/intent"
)

var conversationLines bool

// conversationCmd aggregates the intent of several turns
var conversationCmd = &cobra.Command{
	Use:   "conversation [file]",
	Short: "Aggregate the intent of a conversation",
	Long: `Score every user turn and combine them, weighting recent turns more.

Input is a JSON array of turns, in order:
  [{"role": "user", "content": "try again"}, ...]

With --lines, each non-empty line is a user turn.

Examples:
  outcome conversation turns.json
  printf 'run it\nno, wrong file\nok perfect\n' | outcome conversation --lines -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConversation,
}

func init() {
	conversationCmd.Flags().BoolVar(&conversationLines, "lines", false, "treat each input line as a user turn")
}

func runConversation(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	turns, err := parseTurns(content, conversationLines)
	if err != nil {
		return err
	}

	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	report, err := l.svc.AnalyzeConversation(commandContext(cmd), intent.Indexed(turns))
	if err != nil {
		return err
	}
	return printReport(cmd, report, renderConversation(report))
}

// parseTurns reads turns in input order. Indexes are assigned by the caller.
func parseTurns(content []byte, lines bool) ([]intent.Turn, error) {
	if lines {
		var turns []intent.Turn
		for _, l := range strings.Split(string(content), "\n") {
			if l = strings.TrimSpace(l); l != "" {
				turns = append(turns, intent.Turn{Role: intent.RoleUser, Content: l})
			}
		}
		return turns, nil
	}

	var turns []intent.Turn
	if err := json.Unmarshal(content, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse turns: %w", err)
	}
	return turns, nil
}
