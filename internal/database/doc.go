// Package database opens the PostgreSQL pool that backs the availability
// event log.
//
// The database is optional. A watcher without one still detects and
// announces changes; it just keeps no history across restarts.
package database
