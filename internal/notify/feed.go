package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/stockwatch/internal/model"
)

const (
	defaultSendBuffer = 16
	writeTimeout      = 10 * time.Second
	pingInterval      = 30 * time.Second
	maxInboundSize    = 512
)

// FeedMessage is pushed to subscribers for every cycle with changes.
type FeedMessage struct {
	CycleID      uuid.UUID       `json:"cycle_id"`
	ObservedAt   time.Time       `json:"observed_at"`
	Added        []model.Product `json:"added"`
	Removed      []model.Key     `json:"removed"`
	CurrentCount int             `json:"current_count"`
}

// Feed is a websocket endpoint broadcasting cycle changes. A subscriber
// whose send buffer is full is disconnected.
type Feed struct {
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeed creates a Feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sendBuffer: defaultSendBuffer,
		clients:    make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, f.sendBuffer),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.clients[sub] = struct{}{}
	count := len(f.clients)
	f.mu.Unlock()

	f.logger.Info("feed subscriber connected", "remote", r.RemoteAddr, "subscribers", count)

	go f.writeLoop(sub)
	f.readLoop(sub)
}

// HandleResult broadcasts the cycle's changes. Cycles without changes are
// not sent.
func (f *Feed) HandleResult(ctx context.Context, res model.PollResult) error {
	if !res.HasChanges() {
		return nil
	}

	msg := FeedMessage{
		CycleID:      res.CycleID,
		ObservedAt:   res.StartedAt,
		Added:        res.Added,
		Removed:      res.Removed,
		CurrentCount: len(res.Current),
	}
	if msg.Added == nil {
		msg.Added = []model.Product{}
	}
	if msg.Removed == nil {
		msg.Removed = []model.Key{}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal feed message: %w", err)
	}

	f.broadcast(data)
	return nil
}

// Subscribers returns the number of connected subscribers.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for sub := range f.clients {
		f.removeLocked(sub)
	}
}

func (f *Feed) broadcast(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.clients {
		select {
		case sub.send <- data:
		default:
			f.logger.Warn("dropping slow feed subscriber")
			f.removeLocked(sub)
		}
	}
}

func (f *Feed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(sub)
}

// removeLocked unsubscribes sub. The caller holds f.mu.
func (f *Feed) removeLocked(sub *subscriber) {
	if _, ok := f.clients[sub]; !ok {
		return
	}
	delete(f.clients, sub)
	close(sub.send)
}

// readLoop discards inbound messages until the peer goes away.
func (f *Feed) readLoop(sub *subscriber) {
	defer f.remove(sub)

	sub.conn.SetReadLimit(maxInboundSize)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop drains the send buffer and keeps the connection alive.
func (f *Feed) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.logger.Debug("feed write failed", "err", err)
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
