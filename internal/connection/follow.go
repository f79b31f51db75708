package connection

import (
	"context"
	"log/slog"
	"time"
)

// Follow connects to the feed and calls fn for every alert until ctx is
// done. Lost connections are re-established with exponential backoff.
func Follow(ctx context.Context, cfg FollowConfig, fn func(Alert), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = time.Second
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}

	wait := cfg.ReconnectBaseWait
	for {
		client := NewClient(cfg.Client, logger)
		if err := client.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("feed connection failed",
				"url", cfg.Client.URL,
				"error", err,
				"retry_in", wait,
			)
		} else {
			logger.Info("following feed", "url", cfg.Client.URL)
			wait = cfg.ReconnectBaseWait

			err := drain(ctx, client, fn)
			client.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("feed connection lost", "error", err, "retry_in", wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		// Exponential backoff
		wait *= 2
		if wait > cfg.ReconnectMaxWait {
			wait = cfg.ReconnectMaxWait
		}
	}
}

// drain delivers alerts until the connection ends or ctx is done.
func drain(ctx context.Context, client *Client, fn func(Alert)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert := <-client.Alerts():
			fn(alert)
		case err := <-client.Errors():
			// Deliver what arrived before the connection ended.
			for {
				select {
				case alert := <-client.Alerts():
					fn(alert)
				default:
					return err
				}
			}
		}
	}
}
