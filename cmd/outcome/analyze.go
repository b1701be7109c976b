package main

import (
	"github.com/spf13/cobra"
)

var (
	analyzeCommand  string
	analyzeExitCode bool
)

// analyzeCmd classifies the output of one command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Decide whether command output indicates success",
	Long: `Extract success and failure signals from command output and report the
overall verdict.

Examples:
  # Analyze saved output
  outcome analyze --command "go test ./..." test.log

  # Pipe output directly
  npm test 2>&1 | outcome analyze --command "npm test" -

  # Fail the pipeline on a failure verdict (exit status 2)
  make build 2>&1 | outcome analyze --exit-code`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCommand, "command", "c", "", "command line that produced the output")
	analyzeCmd.Flags().BoolVar(&analyzeExitCode, "exit-code", false, "exit with status 2 on a failure verdict")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	report := l.svc.AnalyzeOutput(commandContext(cmd), string(content), analyzeCommand)
	if err := printReport(cmd, report, renderExecution(report)); err != nil {
		return err
	}
	if analyzeExitCode && !report.Verdict.Success {
		return errFailed
	}
	return nil
}
