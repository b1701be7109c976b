// Outcomed serves execution-outcome and user-intent analysis.
//
// Usage:
//
//	# HTTP API on the configured address (default 127.0.0.1:9191)
//	outcomed
//	outcomed serve
//
//	# MCP tools on stdio, for Claude Code
//	outcomed mcp
//
// Configuration is read from ~/.config/outcomed/config.yaml and the
// environment, e.g. SERVER_PORT=8080 LOGGING_LEVEL=debug outcomed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outcomed",
	Short: "Execution outcome and user intent analysis daemon",
	Long: `outcomed classifies shell command output as success or failure and
human feedback as positive, negative or neutral.

With no subcommand it serves the HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("outcomed by Fyrsmith Labs\n")
		cmd.Printf("Version:    %s\n", version)
		cmd.Printf("Commit:     %s\n", gitCommit)
		cmd.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/outcomed/config.yaml)")
	rootCmd.AddCommand(serveCmd, mcpCmd, versionCmd)
}

// commandContext returns the command's context, which carries the signal
// cancellation set up in main.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func wrap(step string, err error) error {
	return fmt.Errorf("%s: %w", step, err)
}
