// Package events is the process-wide "collection changed" broadcast channel.
// Delivery is best effort and at most once: a subscriber whose buffer is full
// misses the event, and nothing is persisted or replayed.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"wavy/internal/metrics"
)

// Action names the mutation that happened
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
	ActionClear  Action = "clear"
)

// Event identifies which collection changed and how
type Event struct {
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	OwnerID    string    `json:"owner_id"`
	ItemID     int64     `json:"item_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher emits change events
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	logger *zap.Logger
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		logger: logger,
	}
}

// Filter selects the events a subscription receives
type Filter func(Event) bool

// ForOwner matches events of a single user
func ForOwner(ownerID string) Filter {
	return func(ev Event) bool {
		return ev.OwnerID == ownerID
	}
}

// Subscription receives events until closed
type Subscription struct {
	id     uint64
	ch     chan Event
	filter Filter
	bus    *Bus
	once   sync.Once
}

// C returns the delivery channel; it is closed by Close
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the bus
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a subscriber with the given buffer size. Events the
// filter rejects are never queued; a nil filter accepts everything.
func (b *Bus) Subscribe(buffer int, filter Filter) *Subscription {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		ch:     make(chan Event, buffer),
		filter: filter,
		bus:    b,
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers ev to every subscriber without blocking
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			metrics.DroppedEvents.Inc()
			b.logger.Debug("dropping event for slow subscriber",
				zap.String("collection", ev.Collection),
				zap.String("action", string(ev.Action)))
		}
	}
}

// Subscribers returns the current subscriber count
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
