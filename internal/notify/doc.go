// Package notify delivers cycle results to people.
//
// Console prints newly available products as a table on a terminal. Feed
// pushes every cycle with changes to websocket subscribers. Both implement
// poller.ResultHandler.
package notify
