// ABOUTME: Server-sent event stream of query invalidations for open console tabs
// ABOUTME: Lets a tab re-fetch tables that another user's mutation made stale

package webadmin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// heartbeatInterval keeps idle streams alive through proxies.
var heartbeatInterval = 30 * time.Second

// handleEvents streams invalidation events until the client disconnects
func (c *Console) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, subID := c.queries.Notifier().Subscribe(r.Context())
	c.logger.Debug("event stream opened", "subscriber", subID, "subject", identity(r).Subject)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				// notifier closed on shutdown
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.logger.Error("failed to marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
