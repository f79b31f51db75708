// Package model defines shared data types used across the stock watcher.
//
// Conventions:
//   - Prices: shopspring decimal, non-negative, two decimal places
//   - Identity: Key built from the listing URL (and optionally its name)
//   - Timestamps: time.Time in UTC
package model
