package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/hooks"
)

// hookCmd handles a Claude Code hook event
var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle a Claude Code hook event from stdin",
	Long: `Read a Claude Code hook payload from stdin and analyze it:

  PostToolUse       classify shell command output
  UserPromptSubmit  classify the prompt as feedback
  Stop, SessionEnd  analyze the session transcript

Failure verdicts are fed back to the model when hooks.context_on_failure is
set. Register in .claude/settings.json:

  {"hooks": {"PostToolUse": [{"matcher": "Bash",
     "hooks": [{"type": "command", "command": "outcome hook"}]}]}}`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, _ []string) error {
	in, err := hooks.ReadInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	hookCfg, err := hooks.FromConfig(l.cfg)
	if err != nil {
		return fmt.Errorf("invalid hooks config: %w", err)
	}
	m := hooks.NewManager(hookCfg)
	hooks.RegisterAnalysis(m, l.svc, l.logger)

	out, err := m.Dispatch(commandContext(cmd), in)
	if err != nil {
		return err
	}
	return hooks.WriteOutput(cmd.OutOrStdout(), out)
}
