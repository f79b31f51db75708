package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/stockwatch/internal/aggregate"
	"github.com/rickgao/stockwatch/internal/catalog"
	"github.com/rickgao/stockwatch/internal/config"
	"github.com/rickgao/stockwatch/internal/database"
	"github.com/rickgao/stockwatch/internal/fetch"
	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/notify"
	"github.com/rickgao/stockwatch/internal/poller"
	"github.com/rickgao/stockwatch/internal/rank"
	"github.com/rickgao/stockwatch/internal/source"
	"github.com/rickgao/stockwatch/internal/tracker"
	"github.com/rickgao/stockwatch/internal/writer"
)

const retryBackoff = 500 * time.Millisecond

// app holds the wired components of one watcher.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	poller  *poller.Poller
	feed    *notify.Feed
	console *notify.Console
	pool    *pgxpool.Pool
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// newApp wires sources, handlers and the poller. The console handler writes
// to out.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	sources, err := buildSources(cfg, logger)
	if err != nil {
		return nil, err
	}

	policy, err := model.ParseKeyPolicy(cfg.Ranking.KeyPolicy)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	var handlers []poller.ResultHandler
	if !cfg.Console.Quiet {
		a.console = notify.NewConsole(out, notify.ConsoleOptions{
			ShowCurrent: cfg.Console.ShowCurrent,
			Bell:        cfg.Console.Bell,
			Locale:      cfg.Console.Locale,
			Currency:    cfg.Console.Currency,
		})
		handlers = append(handlers, a.console)
	}

	if cfg.Feed.Enabled {
		a.feed = notify.NewFeed(logger.With("component", "feed"))
		handlers = append(handlers, a.feed)
	}

	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := writer.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		handlers = append(handlers, writer.NewEventWriter(pool, logger.With("component", "writer")))
		logger.Info("database connected")
	}

	agg := aggregate.New(aggregate.Config{
		Concurrency:   cfg.Poller.Concurrency,
		SourceTimeout: cfg.Poller.SourceTimeout,
	}, logger)

	a.poller = poller.New(
		poller.Config{
			Interval: cfg.Poller.Interval,
			Jitter:   cfg.Poller.Jitter,
			Ranking:  rank.Options{MinPrice: cfg.Ranking.MinPriceOrDefault(), KeyPolicy: policy},
		},
		sources,
		agg,
		tracker.New(tracker.NewKnownSet(), policy),
		handlers,
		logger,
	)

	return a, nil
}

// close releases the feed subscribers and the database pool.
func (a *app) close() {
	if a.feed != nil {
		a.feed.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// buildSources creates one HTML catalog source per enabled source entry.
func buildSources(cfg *config.Config, logger *slog.Logger) ([]source.Source, error) {
	enabled := cfg.EnabledSources()
	sources := make([]source.Source, 0, len(enabled))

	for _, sc := range enabled {
		cc, err := catalogConfig(sc)
		if err != nil {
			return nil, err
		}

		srcLogger := logger.With("source", sc.Name)
		client := fetch.NewClient(
			fetch.WithTimeout(sc.Timeout),
			fetch.WithRetries(sc.MaxRetries, retryBackoff),
			fetch.WithUserAgent(sc.UserAgent),
			fetch.WithHeaders(sc.Headers),
			fetch.WithLogger(srcLogger),
		)

		src, err := catalog.NewHTML(cc, client, logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// catalogConfig resolves a source entry to selectors, from its preset or
// its inline selectors.
func catalogConfig(sc config.SourceConfig) (catalog.Config, error) {
	var cc catalog.Config
	switch {
	case sc.Preset != "":
		p, ok := catalog.LookupPreset(sc.Preset)
		if !ok {
			return cc, fmt.Errorf("source %s: unknown preset %q", sc.Name, sc.Preset)
		}
		cc = p.Config(sc.Name, sc.URL)
	case sc.Selectors != nil:
		cc = catalog.Config{Name: sc.Name, URL: sc.URL, Selectors: *sc.Selectors}
	default:
		return cc, fmt.Errorf("source %s: no preset or selectors", sc.Name)
	}
	if sc.BaseURL != "" {
		cc.BaseURL = sc.BaseURL
	}
	return cc, nil
}
