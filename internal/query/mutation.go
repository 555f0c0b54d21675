// ABOUTME: Mutations that declare which cached reads they make stale
// ABOUTME: Runs a backend write, then invalidates its keys and publishes one event

package query

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Mutation is a backend write plus the reads it invalidates on success.
type Mutation struct {
	Name        string
	Actor       string
	Invalidates []Key
	Run         func(ctx context.Context) error
}

// Client ties the cache to the notifier. It is the only way console
// handlers change backend state.
type Client struct {
	cache    *Cache
	notifier *Notifier
	logger   *slog.Logger
}

// NewClient creates a query client. Pass nil logger for default.
func NewClient(cache *Cache, notifier *Notifier, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cache:    cache,
		notifier: notifier,
		logger:   logger.With("component", "query"),
	}
}

// Cache exposes the underlying cache for reads.
func (c *Client) Cache() *Cache { return c.cache }

// Notifier exposes the event fan-out for the SSE stream.
func (c *Client) Notifier() *Notifier { return c.notifier }

// Mutate runs m. On failure nothing is invalidated and the error is
// returned unchanged. On success every declared key prefix is dropped and
// the returned event is also published to subscribers.
func (c *Client) Mutate(ctx context.Context, m Mutation) (Event, error) {
	if m.Run == nil {
		return Event{}, errors.New("query: mutation has no Run func")
	}
	if err := m.Run(ctx); err != nil {
		return Event{}, err
	}

	var resources []string
	removed := 0
	for _, k := range m.Invalidates {
		removed += c.cache.Invalidate(k)
		if r := k.Resource(); r != "" && !slices.Contains(resources, r) {
			resources = append(resources, r)
		}
	}
	slices.Sort(resources)

	ev := Event{
		ID:        uuid.New().String(),
		Mutation:  m.Name,
		Resources: resources,
		Actor:     m.Actor,
		At:        time.Now().UTC(),
	}
	c.notifier.Publish(ev)

	c.logger.Debug("mutation applied",
		"mutation", m.Name,
		"resources", resources,
		"entries_dropped", removed)
	return ev, nil
}

// Close stops the cache and closes all subscriptions.
func (c *Client) Close() {
	c.cache.Close()
	c.notifier.Close()
}
