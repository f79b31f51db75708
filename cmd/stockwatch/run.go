package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/stockwatch/internal/config"
	"github.com/rickgao/stockwatch/internal/version"
)

const shutdownTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the configured catalogs until interrupted",
	Long: `Runs a cycle immediately, then one cycle per poller.interval (plus a random
jitter) until SIGINT or SIGTERM. New in-stock products are printed to the
console, pushed to feed subscribers and logged to the database, depending on
which of those are enabled.`,
	RunE: runWatcher,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWatcher(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Log, os.Stderr)

	logger.Info("starting stockwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"instance_id", cfg.Instance.ID,
		"sources", len(cfg.EnabledSources()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	healthServer := newHealthServer(cfg, a)
	if healthServer != nil {
		go func() {
			logger.Info("starting health server", "port", cfg.Health.Port, "feed", cfg.Feed.Enabled)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	if err := a.poller.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	logger.Info("stockwatch running", "interval", cfg.Poller.Interval)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.poller.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop timed out", "error", err)
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("stockwatch stopped")
	return nil
}

// newHealthServer builds the health server, with the feed mounted when it is
// enabled. It returns nil when health.disabled is set.
func newHealthServer(cfg *config.Config, a *app) *http.Server {
	if cfg.Health.Disabled {
		return nil
	}

	var db pinger
	if a.pool != nil {
		db = a.pool
	}
	var feed http.Handler
	if a.feed != nil {
		feed = a.feed
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
		Handler:           createHealthHandler(a.poller, db, feed, cfg.Feed.Path),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
