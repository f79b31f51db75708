// Package rank collapses aggregated candidates into the deduplicated,
// cheapest-first list of in-stock products.
package rank

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/stockwatch/internal/model"
)

// DefaultMinPrice is the plausibility floor. A normalized price at or below
// it is treated as a parse failure rather than a real offer.
var DefaultMinPrice = decimal.NewFromInt(1)

// Options controls filtering and identity.
type Options struct {
	MinPrice  decimal.Decimal
	KeyPolicy model.KeyPolicy
}

// DefaultOptions returns the URL-keyed policy with the default price floor.
func DefaultOptions() Options {
	return Options{
		MinPrice:  DefaultMinPrice,
		KeyPolicy: model.KeyByURL,
	}
}

// Rank filters candidates to in-stock, plausibly priced entries with a URL,
// keeps the first candidate seen for each key, and orders the survivors by
// price, then name.
func Rank(candidates []model.Product, opts Options) []model.Product {
	seen := make(map[model.Key]struct{}, len(candidates))
	ranked := make([]model.Product, 0, len(candidates))

	for _, p := range candidates {
		if p.Status != model.InStock {
			continue
		}
		if !p.Price.GreaterThan(opts.MinPrice) {
			continue
		}
		if strings.TrimSpace(p.URL) == "" {
			continue
		}

		key := opts.KeyPolicy.KeyOf(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ranked = append(ranked, p)
	}

	slices.SortStableFunc(ranked, func(a, b model.Product) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}
