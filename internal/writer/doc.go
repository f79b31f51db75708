// Package writer records availability events in PostgreSQL.
//
// Every Added product and every Removed key of a cycle becomes one row of
// availability_events. The table is append-only: rows are never updated and
// a replayed cycle is absorbed by ON CONFLICT DO NOTHING.
//
// The log is write-only from the watcher's point of view. It is never read
// back into the tracker, so a restart still re-announces everything in
// stock.
package writer
