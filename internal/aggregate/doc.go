// Package aggregate fans a cycle out to every configured source and joins
// the results into one normalized candidate list.
//
// Each source runs in its own goroutine. A failing or panicking source is
// recorded as a failure and contributes nothing; the others are unaffected.
// Candidates keep configured source order, then the order each source
// returned them in, which the ranker uses as its first-seen tie-break.
package aggregate
