package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/price"
	"github.com/rickgao/stockwatch/internal/source"
)

// ErrAllSourcesFailed is returned when every configured source failed in
// the same cycle. Such a cycle must not be diffed.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Config holds aggregator configuration.
type Config struct {
	Concurrency   int           // Max sources fetched at once (0 = all)
	SourceTimeout time.Duration // Per-source fetch deadline (0 = none)
}

// Result is the joined output of one fan-out.
type Result struct {
	Products []model.Product
	Failures []*source.Failure
}

// Aggregator fetches all sources concurrently and normalizes their listings.
type Aggregator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a new Aggregator.
func New(cfg Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// outcome is the per-source result-or-error of a fetch.
type outcome struct {
	listings []model.RawListing
	err      error
}

// Aggregate fetches every source, waits for all of them to settle, and
// returns their normalized listings in source order.
//
// If ctx is cancelled the partial result is discarded and ctx.Err() is
// returned.
func (a *Aggregator) Aggregate(ctx context.Context, sources []source.Source) (Result, error) {
	outcomes := make([]outcome, len(sources))

	var g errgroup.Group
	if a.cfg.Concurrency > 0 {
		g.SetLimit(a.cfg.Concurrency)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			outcomes[i] = a.fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var res Result
	for i, src := range sources {
		out := outcomes[i]
		if out.err != nil {
			failure := &source.Failure{Source: src.Name(), Err: out.err}
			a.logger.Warn("source failed",
				"source", src.Name(),
				"err", out.err,
			)
			res.Failures = append(res.Failures, failure)
			continue
		}
		for _, raw := range out.listings {
			res.Products = append(res.Products, normalize(src.Name(), raw))
		}
	}

	if len(sources) > 0 && len(res.Failures) == len(sources) {
		return res, ErrAllSourcesFailed
	}
	return res, nil
}

// fetch runs one source, converting a panic into an error.
func (a *Aggregator) fetch(ctx context.Context, src source.Source) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: &source.PanicError{Value: r}}
		}
	}()

	if a.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.SourceTimeout)
		defer cancel()
	}

	start := time.Now()
	listings, err := src.Fetch(ctx)
	if err != nil {
		return outcome{err: err}
	}

	a.logger.Debug("source fetched",
		"source", src.Name(),
		"listings", len(listings),
		"duration", time.Since(start),
	)
	return outcome{listings: listings}
}

// normalize converts a raw listing; every field except the price passes through.
func normalize(sourceName string, raw model.RawListing) model.Product {
	return model.Product{
		Name:   raw.Name,
		URL:    raw.URL,
		Price:  price.Normalize(raw.PriceText),
		Status: raw.Status,
		Source: sourceName,
	}
}
