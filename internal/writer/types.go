package writer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event kinds stored in availability_events.kind.
const (
	KindAdded   = "added"
	KindRemoved = "removed"
)

// eventRow represents a row to be inserted into the availability_events table.
type eventRow struct {
	CycleID    uuid.UUID
	ObservedAt time.Time
	Kind       string
	URL        string
	Name       string
	Price      *decimal.Decimal // NULL for removed events
	Source     *string          // NULL for removed events
}

// WriterMetrics tracks writer statistics.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}
