package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/api"
	"github.com/malbox/malbox/internal/pipeline"
)

// newServeCmd creates and configures the 'serve' subcommand, which runs the
// updater on an internal timer and exposes health and metrics endpoints.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the updater on a timer with an HTTP status endpoint",
		Long: `Runs the update pipeline immediately and then on a fixed interval,
serving /healthz, /readyz, /metrics, and /v1/preview over HTTP until
interrupted. Use this instead of 'run' when no external scheduler is
available.`,

		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	runner, err := buildRunner(appInstance, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(runner, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	runOnce := func() {
		result, err := runner.Run(ctx)
		switch {
		case err != nil:
			// A failed run must not kill the daemon; the next tick retries.
			logger.Error("scheduled run failed", zap.Error(err))
		case result.Outcome == pipeline.OutcomeSkipped:
			logger.Info("scheduled run skipped by rate limit", zap.String("run_id", result.RunID))
		default:
			logger.Info("scheduled run published",
				zap.String("run_id", result.RunID),
				zap.Int("bytes", result.Length),
			)
		}
	}

	runOnce()
	ticker := time.NewTicker(cfg.Serve.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http server shutdown failed", zap.Error(err))
			}
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}
