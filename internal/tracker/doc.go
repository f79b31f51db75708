// Package tracker detects which ranked products appeared or disappeared
// between consecutive cycles.
//
// Every key is either untracked or tracked:
//   - untracked -> tracked when it first appears in a ranked list (Added)
//   - tracked -> tracked while it keeps appearing (no event, snapshot kept)
//   - tracked -> untracked when it is missing from a ranked list (Removed)
//
// The KnownSet holding tracked keys is created by the caller and injected.
// It is written once per Diff and has a single writer, so it carries no lock.
package tracker
