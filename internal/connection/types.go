package connection

import (
	"errors"
	"time"

	"github.com/rickgao/stockwatch/internal/notify"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Alert is one feed message with the local time it was received.
type Alert struct {
	notify.FeedMessage
	ReceivedAt time.Time
}

// ClientConfig configures a feed client.
type ClientConfig struct {
	URL          string        // Feed URL (e.g., ws://localhost:8080/feed)
	PingTimeout  time.Duration // Max time without ping or pong before considering connection stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Alert channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   64,
	}
}

// FollowConfig configures Follow.
type FollowConfig struct {
	Client            ClientConfig
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
}

// DefaultFollowConfig returns sensible defaults.
func DefaultFollowConfig() FollowConfig {
	return FollowConfig{
		Client:            DefaultClientConfig(),
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
	}
}
