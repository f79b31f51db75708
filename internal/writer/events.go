package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/stockwatch/internal/model"
)

// DB is the subset of *pgxpool.Pool the writer needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS availability_events (
	cycle_id    UUID        NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	kind        TEXT        NOT NULL,
	url         TEXT        NOT NULL,
	name        TEXT        NOT NULL DEFAULT '',
	price       NUMERIC(12, 2),
	source      TEXT,
	PRIMARY KEY (cycle_id, kind, url, name)
);
CREATE INDEX IF NOT EXISTS availability_events_observed_at_idx
	ON availability_events (observed_at);
`

const insertSQL = `
	INSERT INTO availability_events (cycle_id, observed_at, kind, url, name, price, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (cycle_id, kind, url, name) DO NOTHING
`

// EnsureSchema creates the availability_events table if it does not exist.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create availability_events: %w", err)
	}
	return nil
}

// EventWriter writes the changes of each cycle to availability_events.
type EventWriter struct {
	db     DB
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewEventWriter creates a new EventWriter.
func NewEventWriter(db DB, logger *slog.Logger) *EventWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWriter{
		db:     db,
		logger: logger,
	}
}

// HandleResult inserts one row per added product and removed key.
// Cycles without changes write nothing.
func (w *EventWriter) HandleResult(ctx context.Context, res model.PollResult) error {
	rows := w.transform(res)
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, rows)
	if err != nil {
		w.mu.Lock()
		w.metrics.Errors++
		w.mu.Unlock()
		return fmt.Errorf("insert availability events: %w", err)
	}

	w.mu.Lock()
	w.metrics.Inserts += int64(len(rows) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.mu.Unlock()

	w.logger.Debug("flushed availability events",
		"cycle_id", res.CycleID,
		"count", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}

// Stats returns current metrics.
func (w *EventWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// transform converts a PollResult to event rows, added first.
func (w *EventWriter) transform(res model.PollResult) []eventRow {
	rows := make([]eventRow, 0, len(res.Added)+len(res.Removed))
	for _, p := range res.Added {
		price := p.Price
		src := p.Source
		rows = append(rows, eventRow{
			CycleID:    res.CycleID,
			ObservedAt: res.StartedAt,
			Kind:       KindAdded,
			URL:        p.URL,
			Name:       p.Name,
			Price:      &price,
			Source:     &src,
		})
	}
	for _, k := range res.Removed {
		rows = append(rows, eventRow{
			CycleID:    res.CycleID,
			ObservedAt: res.StartedAt,
			Kind:       KindRemoved,
			URL:        k.URL,
			Name:       k.Name,
		})
	}
	return rows
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *EventWriter) batchInsert(ctx context.Context, rows []eventRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertSQL, r.CycleID, r.ObservedAt, r.Kind, r.URL, r.Name, r.Price, r.Source)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
