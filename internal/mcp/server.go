package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
)

// Server is an MCP server backed by an analysis.Service.
type Server struct {
	mcp            *mcp.Server
	svc            *analysis.Service
	registry       *ToolRegistry
	metrics        *Metrics
	logger         *logging.Logger
	transcriptRoot string
}

// Config configures the MCP server.
type Config struct {
	// Name is the implementation name reported to clients (default: "outcomed").
	Name string

	// Version is the implementation version (default: "dev").
	Version string

	// TranscriptRoot confines analyze_session to files under this directory.
	// Empty allows any readable .jsonl file.
	TranscriptRoot string

	// Meter records tool metrics. Nil uses the global meter provider.
	Meter metric.Meter
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "outcomed",
		Version: "dev",
	}
}

// NewServer creates an MCP server and registers all tools.
func NewServer(cfg *Config, svc *analysis.Service, logger *logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if svc == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	name, version := cfg.Name, cfg.Version
	if name == "" {
		name = "outcomed"
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcp:            mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		svc:            svc,
		registry:       NewToolRegistry(),
		metrics:        NewMetrics(cfg.Meter, logger.Underlying()),
		logger:         logger.Named("mcp"),
		transcriptRoot: cfg.TranscriptRoot,
	}
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Registry returns the metadata of every registered tool.
func (s *Server) Registry() *ToolRegistry {
	return s.registry
}

// Run serves on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// Connect serves one session on t. Used for in-process clients.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}

// Close releases the analysis service.
func (s *Server) Close() error {
	s.logger.Info(context.Background(), "closing MCP server")
	return s.svc.Close()
}
