// Package poller runs watch cycles and schedules them.
//
// One cycle fetches every source, ranks the candidates and diffs them against
// the tracker's known set. The resulting PollResult is handed to each
// ResultHandler in order. Cycles never overlap, so the known set is only ever
// touched from one goroutine at a time.
//
// A cycle that is cancelled or where every source failed produces no
// PollResult and leaves the known set as it was.
package poller
