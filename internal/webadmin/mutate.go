// ABOUTME: Runs console mutations and turns their outcome into htmx responses
// ABOUTME: Success invalidates queries, records activity and triggers toasts; failure keeps the dialog open

package webadmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

// toast is the notification shown by console.js.
type toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// invalidated tells the page which tables to re-fetch. ID lets the tab
// ignore the same event when it also arrives over SSE.
type invalidated struct {
	ID        string   `json:"id"`
	Resources []string `json:"resources"`
}

// setTrigger writes the HX-Trigger header for the given client events.
func (c *Console) setTrigger(w http.ResponseWriter, events map[string]any) {
	data, err := json.Marshal(events)
	if err != nil {
		c.logger.Error("failed to encode HX-Trigger", "error", err)
		return
	}
	w.Header().Set("HX-Trigger", string(data))
}

// change describes one mutation made from a dialog or form.
type change struct {
	mutation query.Mutation
	success  string
	failure  string
	// activity describes the change once Run has succeeded
	activity func() store.ActivityEntry
	// keepOpen leaves the caller to write the body; otherwise a 204 closes the dialog.
	keepOpen bool
}

// apply runs ch.mutation as the signed-in user. On success it records the
// activity, sets the toast and invalidation triggers and, unless keepOpen,
// answers 204. On failure it answers 502 with an error toast so the dialog
// stays open with its input. Returns whether the mutation succeeded.
func (c *Console) apply(w http.ResponseWriter, r *http.Request, ch change) bool {
	id := identity(r)
	ch.mutation.Actor = id.Subject

	ev, err := c.queries.Mutate(r.Context(), ch.mutation)
	if err != nil {
		c.logger.Error("mutation failed",
			"mutation", ch.mutation.Name,
			"subject", id.Subject,
			"status", errorStatus(err),
			"error", err)
		c.setTrigger(w, map[string]any{"toast": toast{Level: "error", Message: ch.failure}})
		http.Error(w, ch.failure, http.StatusBadGateway)
		return false
	}

	if ch.activity != nil {
		c.record(r.Context(), id, ch.activity())
	}

	events := map[string]any{
		"toast":       toast{Level: "success", Message: ch.success},
		"invalidated": invalidated{ID: ev.ID, Resources: ev.Resources},
	}
	if !ch.keepOpen {
		events["close-dialog"] = true
	}
	c.setTrigger(w, events)

	if !ch.keepOpen {
		w.WriteHeader(http.StatusNoContent)
	}
	return true
}

// record appends to the activity log. Failures are logged, never surfaced.
func (c *Console) record(ctx context.Context, id *auth.Identity, e store.ActivityEntry) {
	e.Actor = id.Subject
	e.ActorName = id.DisplayName()
	if err := c.store.AppendActivity(ctx, &e); err != nil {
		c.logger.Error("failed to record activity", "action", e.Action, "error", err)
	}
}

// errorStatus extracts the backend status for logging, 0 for transport errors.
func errorStatus(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
