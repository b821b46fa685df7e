// Package watch turns raw filesystem notifications into the engine's
// semantic FileEvent stream: the Watcher adapter drives index updates and
// publishes to a Bus, which fans events out to independent, cancellable
// subscriptions.
package watch

import (
	"sync"

	"github.com/EdwardDiehl/file-indexer/internal/core"
	"github.com/EdwardDiehl/file-indexer/internal/metrics"
)

// Bus is a single broadcast point for core.FileEvent values. A subscriber
// attached at time T0 only receives events published at or after T0 — there
// is no replay. Each subscriber owns an independent bounded buffer;
// publishing never blocks the publisher, so a full buffer causes the oldest
// buffered event for that subscriber to be dropped rather than stalling the
// watcher.
type Bus struct {
	mu          sync.Mutex
	subscribers map[uint64]chan core.FileEvent
	nextID      uint64
	metrics     *metrics.Metrics
}

// NewBus creates an empty event bus.
func NewBus(m *metrics.Metrics) *Bus {
	return &Bus{subscribers: make(map[uint64]chan core.FileEvent), metrics: m}
}

// Subscription is a live, cancellable handle to a Bus attachment.
type Subscription struct {
	bus    *Bus
	id     uint64
	Events <-chan core.FileEvent
}

// Subscribe attaches a new subscriber with the given buffer capacity.
// capacity <= 0 falls back to 256.
func (b *Bus) Subscribe(capacity int) *Subscription {
	if capacity <= 0 {
		capacity = 256
	}
	ch := make(chan core.FileEvent, capacity)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	count := len(b.subscribers)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SetActiveSubscribers(count)
	}

	return &Subscription{bus: b, id: id, Events: ch}
}

// Cancel detaches the subscription. No further deliveries occur; any
// buffered events are discarded. Cancel is idempotent.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	ch, ok := s.bus.subscribers[s.id]
	if ok {
		delete(s.bus.subscribers, s.id)
	}
	count := len(s.bus.subscribers)
	s.bus.mu.Unlock()

	if ok {
		for drained := false; !drained; {
			select {
			case <-ch:
			default:
				drained = true
			}
		}
		close(ch)
	}
	if s.bus.metrics != nil {
		s.bus.metrics.SetActiveSubscribers(count)
	}
}

// Close detaches and closes every current subscriber, leaving the Bus
// usable but empty. In-flight subscribers blocked reading their Events
// channel (directly, or indirectly through search.Engine's replay/live
// goroutines) observe the channel close and can unwind instead of leaking.
// Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	channels := make([]chan core.FileEvent, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		channels = append(channels, ch)
	}
	b.subscribers = make(map[uint64]chan core.FileEvent)
	b.mu.Unlock()

	for _, ch := range channels {
		close(ch)
	}
	if b.metrics != nil {
		b.metrics.SetActiveSubscribers(0)
	}
}

// Publish offers event to every current subscriber without blocking. If a
// subscriber's buffer is full, the oldest buffered event for that
// subscriber is dropped to make room, so Publish never stalls the watcher.
func (b *Bus) Publish(event core.FileEvent) {
	// offer never blocks, so holding the lock here is cheap, and it keeps
	// Cancel/Close from closing a channel while an event is being sent.
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		b.offer(ch, event)
	}
}

func (b *Bus) offer(ch chan core.FileEvent, event core.FileEvent) {
	select {
	case ch <- event:
		return
	default:
	}

	// Buffer full: drop the oldest queued event, then retry once.
	select {
	case <-ch:
		if b.metrics != nil {
			b.metrics.IncEventsDropped()
		}
	default:
	}
	select {
	case ch <- event:
	default:
		if b.metrics != nil {
			b.metrics.IncEventsDropped()
		}
	}
}
