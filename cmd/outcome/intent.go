package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// intentCmd classifies a single phrase
var intentCmd = &cobra.Command{
	Use:   "intent [phrase...]",
	Short: "Classify a feedback phrase as positive, negative or neutral",
	Long: `Classify one phrase and list the cues that decided it.

The phrase is read from stdin when no arguments are given. An empty phrase
is neutral.

Examples:
  outcome intent "perfect, that works"
  outcome intent --json "that's not right"
  echo "still broken" | outcome intent`,
	Args: cobra.ArbitraryArgs,
	RunE: runIntent,
}

func runIntent(cmd *cobra.Command, args []string) error {
	phrase := strings.Join(args, " ")
	if len(args) == 0 {
		content, err := readInput(cmd, nil)
		if err != nil {
			return err
		}
		phrase = string(content)
	}

	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	report := l.svc.DetectIntent(commandContext(cmd), phrase)
	return printReport(cmd, report, renderIntent(report))
}
