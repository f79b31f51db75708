package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Stock Status
// -----------------------------------------------------------------------------

// StockStatus is the availability reported by a catalog for one listing.
type StockStatus int

const (
	Unknown StockStatus = iota
	InStock
	Delayed
	OutOfStock
)

var statusNames = map[StockStatus]string{
	Unknown:    "unknown",
	InStock:    "in_stock",
	Delayed:    "delayed",
	OutOfStock: "out_of_stock",
}

func (s StockStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStockStatus converts the text form ("in_stock", "delayed", ...) back to a StockStatus.
func ParseStockStatus(text string) (StockStatus, error) {
	for status, name := range statusNames {
		if name == text {
			return status, nil
		}
	}
	return Unknown, fmt.Errorf("unknown stock status %q", text)
}

func (s StockStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StockStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStockStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// -----------------------------------------------------------------------------
// Listings
// -----------------------------------------------------------------------------

// RawListing is one entry as a source extracted it, before normalization.
type RawListing struct {
	Name      string      // Display name
	PriceText string      // Price as rendered by the catalog (e.g. "1 299,00 €")
	URL       string      // Catalog-unique product URL
	Status    StockStatus // Availability as classified by the source
}

// Product is a normalized listing. Values are never mutated after creation.
type Product struct {
	Name   string          `json:"name"`
	URL    string          `json:"url"`
	Price  decimal.Decimal `json:"price"`  // >= 0, two decimal places
	Status StockStatus     `json:"status"` // Copied verbatim from the RawListing
	Source string          `json:"source"` // Name of the source that produced it
}

// -----------------------------------------------------------------------------
// Cycle Output
// -----------------------------------------------------------------------------

// SourceFailure records a source that contributed nothing to a cycle.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// PollResult is the outcome of one completed cycle.
type PollResult struct {
	CycleID   uuid.UUID       `json:"cycle_id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Added     []Product       `json:"added"`   // Newly tracked, in ranked order
	Removed   []Key           `json:"removed"` // No longer present, sorted
	Current   []Product       `json:"current"` // Full ranked list
	Failures  []SourceFailure `json:"failures,omitempty"`
}

// HasChanges reports whether anything was added or removed this cycle.
func (r PollResult) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}
