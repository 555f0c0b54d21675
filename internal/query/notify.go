// ABOUTME: In-memory fan-out of invalidation events to open console tabs
// ABOUTME: Feeds the SSE stream so other sessions re-fetch tables a mutation made stale

package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// Event announces that a mutation made some resources stale.
type Event struct {
	ID        string    `json:"id"`
	Mutation  string    `json:"mutation"`
	Resources []string  `json:"resources"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier delivers events to every open subscription. Delivery is
// non-blocking: a subscriber whose buffer is full misses the event.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event // subID -> ch
	closed      bool
	logger      *slog.Logger
}

// NewNotifier creates a notifier. Pass nil logger for default.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subscribers: make(map[string]chan Event),
		logger:      logger.With("component", "notifier"),
	}
}

// Subscribe registers a subscriber. The subscription is removed and its
// channel closed when ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, subID
	}
	n.subscribers[subID] = ch
	n.mu.Unlock()

	n.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		n.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish sends ev to all subscribers. Sends happen under the read lock so
// Unsubscribe and Close cannot close a channel mid-send; they never block.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- ev:
		default:
			n.logger.Debug("dropped event for slow subscriber", "event_id", ev.ID)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (n *Notifier) Unsubscribe(subID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.subscribers[subID]
	if !ok {
		return
	}
	delete(n.subscribers, subID)
	close(ch)

	n.logger.Debug("subscriber removed", "sub_id", subID)
}

// Subscribers returns the number of open subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for subID, ch := range n.subscribers {
		close(ch)
		delete(n.subscribers, subID)
	}
	n.closed = true
	n.logger.Debug("notifier closed")
}
