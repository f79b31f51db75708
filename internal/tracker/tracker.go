package tracker

import (
	"slices"

	"github.com/rickgao/stockwatch/internal/model"
)

// Diff is the change between the previous cycle and the current ranked list.
type Diff struct {
	Added   []model.Product // In ranked order
	Removed []model.Key     // Sorted
	Current []model.Product // The ranked list as given
}

// Tracker owns a KnownSet and diffs each cycle's ranked list against it.
type Tracker struct {
	known  *KnownSet
	policy model.KeyPolicy
}

// New creates a Tracker over known. A nil known starts from an empty set.
func New(known *KnownSet, policy model.KeyPolicy) *Tracker {
	if known == nil {
		known = NewKnownSet()
	}
	if policy == "" {
		policy = model.KeyByURL
	}
	return &Tracker{known: known, policy: policy}
}

// Known returns the tracker's KnownSet.
func (t *Tracker) Known() *KnownSet {
	return t.known
}

// Diff compares ranked against the KnownSet and then replaces the KnownSet
// with the keys of ranked. The stored snapshot of a key that stays present
// is kept as first seen, even if its price or name has since changed.
func (t *Tracker) Diff(ranked []model.Product) Diff {
	next := make(map[model.Key]model.Product, len(ranked))
	var added []model.Product

	for _, p := range ranked {
		key := t.policy.KeyOf(p)
		if _, dup := next[key]; dup {
			continue
		}
		if prev, ok := t.known.entries[key]; ok {
			next[key] = prev
			continue
		}
		next[key] = p
		added = append(added, p)
	}

	var removed []model.Key
	for key := range t.known.entries {
		if _, ok := next[key]; !ok {
			removed = append(removed, key)
		}
	}
	slices.SortFunc(removed, model.Key.Compare)

	t.known.replace(next)

	return Diff{
		Added:   added,
		Removed: removed,
		Current: ranked,
	}
}
