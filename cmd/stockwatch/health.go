package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/version"
)

// cycleReporter exposes the outcome of the latest cycle.
type cycleReporter interface {
	Last() (model.PollResult, bool)
	LastError() error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// createHealthHandler creates the HTTP handler for health checks, the
// current list and, when feed is set, the websocket feed.
func createHealthHandler(cycles cycleReporter, db pinger, feed http.Handler, feedPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    version.Info   `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		// Check poller
		last, ok := cycles.Last()
		pollerStatus := map[string]any{}
		if ok {
			pollerStatus["last_cycle_id"] = last.CycleID
			pollerStatus["last_cycle_at"] = last.StartedAt
			pollerStatus["in_stock"] = len(last.Current)
			pollerStatus["source_failures"] = len(last.Failures)
			if len(last.Failures) > 0 {
				health.Status = "degraded"
			}
		} else {
			health.Status = "starting"
		}
		if err := cycles.LastError(); err != nil {
			pollerStatus["last_error"] = err.Error()
			health.Status = "degraded"
		}
		health.Components["poller"] = pollerStatus

		// Check database
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/current", func(w http.ResponseWriter, r *http.Request) {
		last, _ := cycles.Last()

		current := last.Current
		if current == nil {
			current = []model.Product{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"cycle_id": last.CycleID,
			"count":    len(current),
			"products": current,
		})
	})

	if feed != nil {
		mux.Handle(feedPath, feed)
	}

	return mux
}
