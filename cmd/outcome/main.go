// Package main implements the outcome CLI: local analysis of command output,
// feedback phrases, conversations and Claude Code transcripts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/config"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
)

var (
	// configPath overrides ~/.config/outcomed/config.yaml
	configPath string
	// jsonOutput prints machine-readable reports
	jsonOutput bool
	// verbose logs at the configured level instead of warn
	verbose bool
	// version information
	version = "dev"
)

// errFailed signals a failure verdict when --exit-code is set. It maps to
// exit status 2 so scripts can tell it apart from usage errors.
var errFailed = errors.New("execution failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Classify command output and user feedback",
	Long: `outcome decides whether a shell command succeeded from its output, and
whether a user's feedback is positive, negative or neutral.

Analysis runs locally with the same rules and lexicon as outcomed.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/outcomed/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print reports as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(intentCmd)
	rootCmd.AddCommand(conversationCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(healthCmd)
}

// local is an in-process analysis service and the config it was built
// from.
type local struct {
	cfg    *config.Config
	svc    *analysis.Service
	logger *logging.Logger
}

// newLocal builds a local analysis service from configuration. Logs go to
// stderr so stdout stays clean for reports.
func newLocal() (*local, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg, err := logging.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	logCfg.Output.Writer = "stderr"
	logCfg.Output.OTEL = false
	if !verbose {
		logCfg.Level = "warn"
	}
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	svc, err := analysis.NewFromConfig(cfg, analysis.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &local{cfg: cfg, svc: svc, logger: logger}, nil
}

func (l *local) close() {
	_ = l.svc.Close()
	_ = l.logger.Sync()
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return content, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
