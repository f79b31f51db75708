package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/stockwatch/internal/aggregate"
	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/rank"
	"github.com/rickgao/stockwatch/internal/source"
	"github.com/rickgao/stockwatch/internal/tracker"
)

// ErrCycleInProgress is returned by RunCycle when another cycle is running.
var ErrCycleInProgress = errors.New("poll cycle already in progress")

// ResultHandler receives the result of every completed cycle.
type ResultHandler interface {
	HandleResult(ctx context.Context, res model.PollResult) error
}

// HandlerFunc is a function adapter for ResultHandler.
type HandlerFunc func(context.Context, model.PollResult) error

func (f HandlerFunc) HandleResult(ctx context.Context, res model.PollResult) error {
	return f(ctx, res)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Pause after each cycle (default: 10s)
	Jitter   time.Duration // Random extra pause in [0, Jitter)
	Ranking  rank.Options
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
		Ranking:  rank.DefaultOptions(),
	}
}

// Poller drives watch cycles over a fixed set of sources.
type Poller struct {
	cfg        Config
	sources    []source.Source
	aggregator *aggregate.Aggregator
	tracker    *tracker.Tracker
	handlers   []ResultHandler
	logger     *slog.Logger

	cycleMu sync.Mutex // held for the duration of a cycle

	mu      sync.RWMutex
	last    model.PollResult
	hasLast bool
	lastErr error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(
	cfg Config,
	sources []source.Source,
	aggregator *aggregate.Aggregator,
	tr *tracker.Tracker,
	handlers []ResultHandler,
	logger *slog.Logger,
) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if aggregator == nil {
		aggregator = aggregate.New(aggregate.Config{}, logger)
	}
	if tr == nil {
		tr = tracker.New(nil, cfg.Ranking.KeyPolicy)
	}
	return &Poller{
		cfg:        cfg,
		sources:    sources,
		aggregator: aggregator,
		tracker:    tr,
		handlers:   handlers,
		logger:     logger,
	}
}

// RunCycle runs one fetch, rank and diff cycle and hands the result to the
// handlers. On error the known set is unchanged and handlers are not called.
func (p *Poller) RunCycle(ctx context.Context) (model.PollResult, error) {
	if !p.cycleMu.TryLock() {
		return model.PollResult{}, ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	cycleID := uuid.New()
	start := time.Now()

	agg, err := p.aggregator.Aggregate(ctx, p.sources)
	if err != nil {
		p.setLastErr(err)
		return model.PollResult{}, fmt.Errorf("cycle %s: %w", cycleID, err)
	}

	ranked := rank.Rank(agg.Products, p.cfg.Ranking)
	diff := p.tracker.Diff(ranked)

	res := model.PollResult{
		CycleID:   cycleID,
		StartedAt: start,
		Duration:  time.Since(start),
		Added:     diff.Added,
		Removed:   diff.Removed,
		Current:   diff.Current,
	}
	for _, f := range agg.Failures {
		res.Failures = append(res.Failures, f.Report())
	}

	p.mu.Lock()
	p.last = res
	p.hasLast = true
	p.lastErr = nil
	p.mu.Unlock()

	for _, h := range p.handlers {
		if err := h.HandleResult(ctx, res); err != nil {
			p.logger.Warn("result handler failed",
				"cycle_id", cycleID,
				"err", err,
			)
		}
	}

	return res, nil
}

// Last returns the most recent completed cycle, if any.
func (p *Poller) Last() (model.PollResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.hasLast
}

// LastError returns the error of the most recent cycle, nil if it completed.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Poller) setLastErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"sources", len(p.sources),
		"interval", p.cfg.Interval,
		"jitter", p.cfg.Jitter,
	)

	return nil
}

// Stop cancels the in-flight cycle and waits for the loop to exit.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop. The pause is measured from the end of a cycle.
func (p *Poller) run() {
	defer p.wg.Done()

	for {
		p.cycle()

		timer := time.NewTimer(p.nextDelay())
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle runs one cycle from the loop and logs its outcome.
func (p *Poller) cycle() {
	res, err := p.RunCycle(p.ctx)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.logger.Warn("poll cycle failed", "err", err)
		return
	}

	p.logger.Info("poll cycle complete",
		"cycle_id", res.CycleID,
		"current", len(res.Current),
		"added", len(res.Added),
		"removed", len(res.Removed),
		"failures", len(res.Failures),
		"duration", res.Duration,
	)
}

func (p *Poller) nextDelay() time.Duration {
	d := p.cfg.Interval
	if p.cfg.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.cfg.Jitter)))
	}
	return d
}
