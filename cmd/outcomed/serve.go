package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	outhttp "github.com/fyrsmithlabs/outcomed/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the HTTP API until interrupted.

Endpoints:
  POST /api/v1/output        analyze command output
  POST /api/v1/intent        classify a phrase
  POST /api/v1/conversation  aggregate a conversation
  GET  /api/v1/rules         list execution rules
  GET  /health               liveness
  GET  /metrics              Prometheus metrics`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, configPath, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Warn(context.Background(), "shutdown incomplete", zap.Error(err))
		}
	}()
	return serve(ctx, a)
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func serve(ctx context.Context, a *app) error {
	srv, err := outhttp.NewServer(a.svc, a.logger, &outhttp.Config{
		Host:      a.cfg.Server.Host,
		Port:      a.cfg.Server.Port,
		BodyLimit: a.cfg.Server.BodyLimit,
		RPS:       a.cfg.Server.RateLimit.RPS,
		Burst:     a.cfg.Server.RateLimit.Burst,
	},
		outhttp.WithMeter(a.tel.Meter("github.com/fyrsmithlabs/outcomed/internal/http")),
		outhttp.WithVersion(version),
	)
	if err != nil {
		return wrap("creating http server", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return wrap("http shutdown", err)
	}
	return <-errCh
}
