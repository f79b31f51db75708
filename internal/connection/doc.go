// Package connection subscribes to a running watcher's alert feed.
//
// Client holds one websocket connection and decodes every pushed message.
// Follow keeps a client connected across server restarts, reconnecting with
// exponential backoff.
package connection
