package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/stockwatch/internal/config"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single cycle, print the result and exit",
	Long: `Runs one cycle against the configured catalogs. Since nothing is known
yet, every in-stock product is reported as new. Exits non-zero when the cycle
fails, for example when every source failed.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The feed has no subscribers in a one-shot run.
	cfg.Feed.Enabled = false

	logger := newLogger(cfg.Log, os.Stderr)

	a, err := newApp(cmd.Context(), cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.poller.RunCycle(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info("cycle complete",
		"cycle_id", res.CycleID,
		"in_stock", len(res.Current),
		"failures", len(res.Failures),
		"duration", res.Duration,
	)
	return nil
}
