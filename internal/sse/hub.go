// Package sse implements the Server-Sent-Events hub behind the dashboard's
// live channels: the generic /api/v1/sse stream and the Hyros sync event
// stream.
package sse

import (
	"sync"

	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/metrics"
)

// Named events the dashboard subscribes to.
const (
	EventConnection        = "connection"
	EventHyros             = "hyros"
	EventHyrosSyncComplete = "hyros_sync_complete"
)

// Event is one named SSE event. Data is JSON-encoded at write time.
type Event struct {
	Name string
	Data any
}

// SyncStatus is the body of hyros events: {"status": "...", "message": "..."}.
type SyncStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const clientBuffer = 16

// Subscription is one client's event feed. The channel is closed by
// Hub.Unsubscribe; a full buffer drops events rather than blocking the
// publisher.
type Subscription struct {
	C      chan Event
	filter map[string]bool
}

// wants reports whether the subscription asked for this event name.
func (s *Subscription) wants(name string) bool {
	return len(s.filter) == 0 || s.filter[name]
}

// Hub fans events out to subscribed clients. Publishing never blocks: a
// slow client loses events instead of stalling the sync job that emits
// them. Dropped deliveries are logged; there is no replay.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Subscription]struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// SetMetrics attaches the metrics collector for drop accounting.
func (h *Hub) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Subscription]struct{}),
		logger:  logger,
	}
}

// Subscribe registers a client interested in the given event names. An
// empty name list subscribes to everything.
func (h *Hub) Subscribe(names ...string) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, clientBuffer),
		filter: make(map[string]bool, len(names)),
	}
	for _, n := range names {
		sub.filter[n] = true
	}
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a client and closes its channel. Safe to call once
// per subscription.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.clients[sub]
	delete(h.clients, sub)
	h.mu.Unlock()
	if ok {
		close(sub.C)
	}
}

// Publish delivers the event to every interested client without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.clients {
		if !sub.wants(ev.Name) {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("event", ev.Name),
			)
			if h.metrics != nil {
				h.metrics.RecordSSEDrop(ev.Name)
			}
		}
	}
}

// ClientCount returns the number of connected subscriptions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
