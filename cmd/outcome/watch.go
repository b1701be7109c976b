package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/watch"
)

var (
	watchCommand    string
	watchTranscript bool
	watchDebounce   time.Duration
)

// watchCmd re-analyzes a file as it grows
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Follow a log or transcript and report verdict changes",
	Long: `Follow a file as it is written and print the verdict every time it
changes. The file may not exist yet.

By default the file is command output. With --transcript it is a Claude
Code session transcript and the whole session is re-analyzed.

Examples:
  make test > test.log 2>&1 & outcome watch --command "make test" test.log
  outcome watch --transcript ~/.claude/projects/my-project/5f1c.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCommand, "command", "c", "", "command line producing the output")
	watchCmd.Flags().BoolVar(&watchTranscript, "transcript", false, "treat the file as a session transcript")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-analyzing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	f, err := watch.NewFollower(args[0], watch.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := f.Start(ctx); err != nil {
		return err
	}
	defer f.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", args[0])

	var analyze analyzeFunc
	if watchTranscript {
		analyze = transcriptAnalyzer(l.svc, args[0])
	} else {
		analyze = outputAnalyzer(l.svc, watchCommand)
	}
	return followVerdicts(ctx, cmd.OutOrStdout(), f.Updates(), analyze)
}

// analyzeFunc turns one snapshot into a verdict and the report to print.
type analyzeFunc func(ctx context.Context, snap watch.Snapshot) (execution.Verdict, any, string, error)

func outputAnalyzer(svc *analysis.Service, command string) analyzeFunc {
	return func(ctx context.Context, snap watch.Snapshot) (execution.Verdict, any, string, error) {
		report := svc.AnalyzeOutput(ctx, string(snap.Content), command)
		return report.Verdict, report, renderExecution(report), nil
	}
}

func transcriptAnalyzer(svc *analysis.Service, path string) analyzeFunc {
	sessionID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return func(ctx context.Context, snap watch.Snapshot) (execution.Verdict, any, string, error) {
		report, err := svc.AnalyzeSessionReader(ctx, bytes.NewReader(snap.Content), sessionID)
		if err != nil {
			return execution.Verdict{}, nil, "", err
		}
		return report.Verdict, report, renderSession(report), nil
	}
}

// followVerdicts prints a report for the first snapshot and for every
// snapshot whose verdict differs from the last one printed. It returns when
// ctx is done or updates is closed.
func followVerdicts(ctx context.Context, w io.Writer, updates <-chan watch.Snapshot, analyze analyzeFunc) error {
	var (
		last    execution.Verdict
		printed bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			verdict, report, text, err := analyze(ctx, snap)
			if err != nil {
				fmt.Fprintf(w, "analysis failed: %v\n", err)
				continue
			}
			if printed && verdict == last {
				continue
			}
			last, printed = verdict, true
			if err := writeReport(w, report, text); err != nil {
				return err
			}
		}
	}
}
