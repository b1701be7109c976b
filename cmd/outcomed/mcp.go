package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools on stdio",
	Long: `Serve MCP tools on stdin/stdout for Claude Code and other MCP clients.

Tools: analyze_output, detect_intent, analyze_conversation, analyze_session,
list_rules, tool_search.

Logs go to stderr; stdout carries the protocol.

Register with Claude Code:
  claude mcp add outcomed -- outcomed mcp`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, configPath, true)
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(&mcp.Config{
		Name:           "outcomed",
		Version:        version,
		TranscriptRoot: a.cfg.MCP.TranscriptRoot,
		Meter:          a.tel.Meter("github.com/fyrsmithlabs/outcomed/internal/mcp"),
	}, a.svc, a.logger)
	if err != nil {
		_ = a.close()
		return wrap("creating mcp server", err)
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Warn(context.Background(), "shutdown incomplete", zap.Error(err))
		}
	}()

	return srv.Run(ctx)
}
