package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRelayBuffer  = 256
	defaultRelayTimeout = 2 * time.Second
)

// RedisRelay mirrors hub events across instances over a pub/sub channel.
// Outgoing events are queued and published from a single goroutine; a full
// queue drops the event.
type RedisRelay struct {
	rdb     redis.UniversalClient
	channel string
	timeout time.Duration
	queue   chan Event
	dropped atomic.Uint64
	log     *zap.Logger

	OnDrop func(Event)
}

// NewRedisRelay builds a relay on channel.
func NewRedisRelay(rdb redis.UniversalClient, channel string, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "wellness_system_events"
	}
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		timeout: defaultRelayTimeout,
		queue:   make(chan Event, defaultRelayBuffer),
		log:     logger.With(zap.String("component", "events_relay")),
	}
}

// Dropped reports how many outgoing events were discarded on a full queue.
func (r *RedisRelay) Dropped() uint64 { return r.dropped.Load() }

// Attach publishes the hub's local events to Redis and delivers remote events
// back into the hub until ctx is cancelled.
func (r *RedisRelay) Attach(ctx context.Context, hub *Hub) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}

	hub.Relay(func(e Event) {
		if e.Origin == hub.Origin() {
			r.enqueue(e)
		}
	})
	go r.drain(ctx)

	go func() {
		defer sub.Close() //nolint:errcheck
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					r.log.Warn("bad relay payload", zap.Error(err))
					continue
				}
				if e.Origin == hub.Origin() {
					continue
				}
				hub.Deliver(e)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) enqueue(e Event) {
	select {
	case r.queue <- e:
	default:
		r.dropped.Add(1)
		r.log.Warn("dropping outgoing event; relay queue full", zap.String("collection", e.Collection))
		if r.OnDrop != nil {
			r.OnDrop(e)
		}
	}
}

func (r *RedisRelay) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.queue:
			r.send(ctx, e)
		}
	}
}

func (r *RedisRelay) send(ctx context.Context, e Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Publish(pubCtx, r.channel, raw).Err(); err != nil {
		r.log.Warn("relay publish failed", zap.String("collection", e.Collection), zap.Error(err))
	}
}
