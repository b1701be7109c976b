package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/analysis"
	"github.com/fyrsmithlabs/outcomed/internal/config"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
	"github.com/fyrsmithlabs/outcomed/internal/telemetry"
)

// app holds the process-wide dependencies shared by serve and mcp.
type app struct {
	cfg    *config.Config
	tel    *telemetry.Telemetry
	logger *logging.Logger
	svc    *analysis.Service
}

// newApp loads configuration and initializes telemetry, then logging, then
// the analysis service. When stdio is set, stdout carries a protocol and
// logs are moved to stderr.
func newApp(ctx context.Context, path string, stdio bool) (*app, error) {
	cfg, err := config.LoadWithFile(path)
	if err != nil {
		return nil, wrap("loading config", err)
	}

	telCfg, err := telemetry.FromConfig(cfg)
	if err != nil {
		return nil, wrap("telemetry config", err)
	}
	if telCfg.ServiceVersion == "" || telCfg.ServiceVersion == "dev" {
		telCfg.ServiceVersion = version
	}
	tel, err := telemetry.New(ctx, telCfg)
	if err != nil {
		return nil, wrap("initializing telemetry", err)
	}

	logCfg, err := logging.FromConfig(cfg)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, wrap("logging config", err)
	}
	if stdio && logCfg.Output.Writer == "stdout" {
		logCfg.Output.Writer = "stderr"
	}
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, wrap("initializing logger", err)
	}

	svc, err := analysis.NewFromConfig(cfg,
		analysis.WithLogger(logger),
		analysis.WithTracer(tel.Tracer("github.com/fyrsmithlabs/outcomed/internal/analysis")),
		analysis.WithMetrics(analysis.DefaultMetrics()),
	)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, wrap("initializing analysis service", err)
	}

	logger.Info(ctx, "outcomed initialized",
		zap.String("version", version),
		zap.Int("rules", len(svc.Rules())),
		zap.Bool("telemetry", tel.IsEnabled()),
		zap.Bool("events", cfg.Events.Enabled),
	)
	return &app{cfg: cfg, tel: tel, logger: logger, svc: svc}, nil
}

// close releases the service and flushes telemetry.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if err := a.svc.Close(); err != nil {
		errs = append(errs, wrap("closing analysis service", err))
	}
	if err := a.tel.Shutdown(ctx); err != nil {
		errs = append(errs, wrap("shutting down telemetry", err))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
