package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"teambudget/internal/backend"
	"teambudget/internal/cli"
	"teambudget/internal/config"
	"teambudget/internal/core"
	apphttp "teambudget/internal/http"
	"teambudget/internal/log"
	"teambudget/internal/metrics"
	"teambudget/internal/middleware/ratelimit"
	"teambudget/internal/store"
)

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}
			rpm, _ := cmd.Flags().GetInt("rate-limit")
			return serve(cmd.Context(), cfg, rpm, logger)
		},
	}
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().Int("rate-limit", ratelimit.DefaultConfig().RequestsPerMinute, "Write requests allowed per client per minute")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, rpm int, logger *log.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.GracefulShutdown(parent, logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	initial, found, err := result.Backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		logger.Info("No snapshot found, starting from an empty roster")
		initial = core.DefaultState()
	}

	m := metrics.New(true)
	st := store.New(initial,
		store.WithPersist(result.Backend.Persist),
		store.WithRecorder(m),
		store.WithLogger(logger),
	)
	m.Observe(st.Result())

	limits := ratelimit.DefaultConfig()
	limits.RequestsPerMinute = rpm
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:     st,
		Readiness: result.Backend,
		Metrics:   m,
		Logger:    logger,
		RateLimit: limits,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting teambudget server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
	return nil
}
