// Package fetch provides the HTTP client catalog sources use to download
// listing pages.
//
// Requests carry browser-like headers (many catalogs reject obvious bots),
// and 429/5xx responses are retried with jittered exponential backoff.
// Retries stay inside a single fetch; a source that still fails is left to
// the next polling cycle.
package fetch
