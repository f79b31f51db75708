package tracker

import (
	"slices"

	"github.com/rickgao/stockwatch/internal/model"
)

// KnownSet is the set of products that were current at the end of the last
// completed cycle, with the snapshot taken when each was first seen.
type KnownSet struct {
	entries map[model.Key]model.Product
}

// NewKnownSet creates an empty KnownSet.
func NewKnownSet() *KnownSet {
	return &KnownSet{entries: make(map[model.Key]model.Product)}
}

// Len returns the number of tracked keys.
func (k *KnownSet) Len() int {
	return len(k.entries)
}

// Get returns the stored snapshot for key.
func (k *KnownSet) Get(key model.Key) (model.Product, bool) {
	p, ok := k.entries[key]
	return p, ok
}

// Keys returns the tracked keys in sorted order.
func (k *KnownSet) Keys() []model.Key {
	keys := make([]model.Key, 0, len(k.entries))
	for key := range k.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, model.Key.Compare)
	return keys
}

// replace swaps in the next cycle's entries in one step.
func (k *KnownSet) replace(entries map[model.Key]model.Product) {
	k.entries = entries
}
