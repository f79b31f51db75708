package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rickgao/stockwatch/internal/config"
	"github.com/rickgao/stockwatch/internal/connection"
	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/notify"
)

var tailURL string

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print alerts from a running watcher's feed",
	Long: `Connects to the websocket feed of a running "stockwatch run" and prints
every new in-stock product as it is announced. Reconnects when the watcher
restarts. Without --url the feed address is taken from the config file.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVar(&tailURL, "url", "", "feed URL (e.g., ws://localhost:8080/feed)")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, _ []string) error {
	url := tailURL
	logCfg := config.LogConfig{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat}
	console := notify.ConsoleOptions{Bell: true}

	if url == "" {
		cfg, err := config.LoadWithDefaults(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		url = fmt.Sprintf("ws://localhost:%d%s", cfg.Health.Port, cfg.Feed.Path)
		logCfg = cfg.Log
		console.Locale = cfg.Console.Locale
		console.Currency = cfg.Console.Currency
		console.Bell = cfg.Console.Bell
	}

	logger := newLogger(logCfg, os.Stderr)
	out := notify.NewConsole(cmd.OutOrStdout(), console)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := connection.DefaultFollowConfig()
	cfg.Client.URL = url

	err := connection.Follow(ctx, cfg, func(a connection.Alert) {
		res := model.PollResult{
			CycleID:   a.CycleID,
			StartedAt: a.ObservedAt,
			Added:     a.Added,
			Removed:   a.Removed,
		}
		if err := out.HandleResult(ctx, res); err != nil {
			logger.Warn("render alert failed", "error", err)
		}
	}, logger)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
