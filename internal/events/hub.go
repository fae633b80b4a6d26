package events

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Filter selects the events a subscription receives. Nil accepts all.
type Filter func(Event) bool

// Subscription is one consumer's buffered view of the hub.
type Subscription struct {
	ID     string
	out    chan Event
	filter Filter
	hub    *Hub
	once   sync.Once
}

// C returns the delivery channel. It is closed by Close.
func (s *Subscription) C() <-chan Event { return s.out }

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.out)
	})
}

// Hub fans events out to subscriptions without blocking publishers; a full
// subscriber buffer drops the event for that subscriber only.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	relays []func(Event)
	origin string
	log    *zap.Logger

	OnDrop func(Event)
}

// NewHub builds an empty hub tagged with a random origin id.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		origin: uuid.NewString(),
		log:    logger.With(zap.String("component", "events_hub")),
	}
}

// Origin identifies this hub on shared relays.
func (h *Hub) Origin() string { return h.origin }

// Subscribe registers a consumer with the given buffer size.
func (h *Hub) Subscribe(filter Filter, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	s := &Subscription{ID: uuid.NewString(), out: make(chan Event, buffer), filter: filter, hub: h}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("subscriber added", zap.String("subscription", s.ID))
	return s
}

// Relay registers fn to receive every locally published event.
func (h *Hub) Relay(fn func(Event)) {
	h.mu.Lock()
	h.relays = append(h.relays, fn)
	h.mu.Unlock()
}

// Publish delivers e locally and hands it to relays.
func (h *Hub) Publish(e Event) {
	if e.Origin == "" {
		e.Origin = h.origin
	}
	h.Deliver(e)

	h.mu.RLock()
	relays := h.relays
	h.mu.RUnlock()
	for _, fn := range relays {
		fn(e)
	}
}

// Deliver fans e out to local subscribers only.
func (h *Hub) Deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.filter != nil && !s.filter(e) {
			continue
		}
		select {
		case s.out <- e:
		default:
			h.log.Warn("dropping event; subscriber buffer full",
				zap.String("subscription", s.ID), zap.String("collection", e.Collection))
			if h.OnDrop != nil {
				h.OnDrop(e)
			}
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	h.log.Debug("subscriber removed", zap.String("subscription", s.ID))
}
