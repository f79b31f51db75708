package connection

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/notify"
)

// feedServer serves a real watcher feed.
func feedServer(t *testing.T) (*notify.Feed, *httptest.Server) {
	t.Helper()
	feed := notify.NewFeed(nil)
	server := httptest.NewServer(feed)
	t.Cleanup(func() {
		feed.Close()
		server.Close()
	})
	return feed, server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitSubscribers(t *testing.T, feed *notify.Feed, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for feed.Subscribers() != n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := feed.Subscribers(); got != n {
		t.Fatalf("Subscribers() = %d, want %d", got, n)
	}
}

func changedResult() model.PollResult {
	added := model.Product{
		Name:   "RX 7800 XT",
		URL:    "https://shop.example/7800xt",
		Price:  decimal.RequireFromString("549.90"),
		Status: model.InStock,
		Source: "grosbill",
	}
	return model.PollResult{
		CycleID:   uuid.New(),
		StartedAt: time.Now(),
		Added:     []model.Product{added},
		Current:   []model.Product{added},
	}
}

func testClientConfig(url string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.URL = url
	return cfg
}

func TestClient_Connect(t *testing.T) {
	feed, server := feedServer(t)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}
	waitSubscribers(t, feed, 1)

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
	if err := client.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_ReceivesAlerts(t *testing.T) {
	feed, server := feedServer(t)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()
	waitSubscribers(t, feed, 1)

	res := changedResult()
	if err := feed.HandleResult(context.Background(), res); err != nil {
		t.Fatalf("HandleResult failed: %v", err)
	}

	select {
	case alert := <-client.Alerts():
		if alert.CycleID != res.CycleID {
			t.Errorf("CycleID = %s, want %s", alert.CycleID, res.CycleID)
		}
		if len(alert.Added) != 1 || alert.Added[0].Name != "RX 7800 XT" {
			t.Errorf("Added = %+v", alert.Added)
		}
		if alert.ReceivedAt.IsZero() {
			t.Error("ReceivedAt not set")
		}
	case err := <-client.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for alert")
	}
}

func TestClient_ServerClose(t *testing.T) {
	feed, server := feedServer(t)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()
	waitSubscribers(t, feed, 1)

	feed.Close()

	select {
	case err := <-client.Errors():
		if err == nil {
			t.Error("expected a close error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connection error")
	}
}

func TestClient_ConnectFails(t *testing.T) {
	client := NewClient(testClientConfig("ws://127.0.0.1:1/feed"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("expected error connecting to a closed port")
	}
	if client.IsConnected() {
		t.Error("IsConnected should be false after a failed connect")
	}
}

func TestFollow(t *testing.T) {
	feed, server := feedServer(t)

	cfg := DefaultFollowConfig()
	cfg.Client.URL = wsURL(server)
	cfg.ReconnectBaseWait = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Alert, 1)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, cfg, func(a Alert) {
			got <- a
			cancel()
		}, nil)
	}()

	waitSubscribers(t, feed, 1)
	res := changedResult()
	if err := feed.HandleResult(context.Background(), res); err != nil {
		t.Fatalf("HandleResult failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Follow() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}

	alert := <-got
	if alert.CycleID != res.CycleID {
		t.Errorf("CycleID = %s, want %s", alert.CycleID, res.CycleID)
	}
}

func TestFollow_RetriesUntilCancelled(t *testing.T) {
	cfg := DefaultFollowConfig()
	cfg.Client.URL = "ws://127.0.0.1:1/feed"
	cfg.ReconnectBaseWait = 5 * time.Millisecond
	cfg.ReconnectMaxWait = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Follow(ctx, cfg, func(Alert) { t.Error("unexpected alert") }, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Follow() = %v, want context.DeadlineExceeded", err)
	}
}
