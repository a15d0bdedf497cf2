// Package eventbus delivers typed notifications to explicit subscribers.
package eventbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Envelope wraps an event with delivery metadata. Delivery is
// at-least-once: the same envelope may arrive more than once, so handlers
// must be idempotent.
type Envelope struct {
	ID     string
	Origin string // Bus that first published the event
	At     time.Time
	Event  Event
}

// Handler reacts to one envelope.
type Handler func(Envelope)

// Subscription is returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.handlers, s.id)
}

// Bus is an in-process event bus. Handlers run synchronously on the
// publishing goroutine in subscription order.
type Bus struct {
	origin string
	log    logger.Logger

	mu       sync.RWMutex
	nextID   uint64
	order    []uint64
	handlers map[uint64]Handler
}

// New creates a bus with a random origin id.
func New(log logger.Logger) *Bus {
	if log == nil {
		log = logger.NewNop()
	}
	return &Bus{
		origin:   uuid.NewString(),
		log:      log,
		handlers: make(map[uint64]Handler),
	}
}

// Origin identifies this bus in envelopes it publishes.
func (b *Bus) Origin() string { return b.origin }

// Subscribe registers h for every future event.
func (b *Bus) Subscribe(h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)
	return Subscription{bus: b, id: id}
}

// Publish wraps ev in a new envelope and delivers it.
func (b *Bus) Publish(ev Event) Envelope {
	env := Envelope{ID: uuid.NewString(), Origin: b.origin, At: time.Now().UTC(), Event: ev}
	b.Deliver(env)
	return env
}

// Deliver hands an existing envelope to every subscriber. Relays use it to
// inject envelopes received from elsewhere without changing their id.
func (b *Bus) Deliver(env Envelope) {
	b.mu.RLock()
	live := make([]Handler, 0, len(b.handlers))
	kept := b.order[:0:0]
	for _, id := range b.order {
		if h, ok := b.handlers[id]; ok {
			live = append(live, h)
			kept = append(kept, id)
		}
	}
	stale := len(kept) != len(b.order)
	b.mu.RUnlock()

	if stale {
		b.compact()
	}

	b.log.Debug("event delivered",
		logger.String("event", env.Event.Name()),
		logger.String("id", env.ID),
		logger.Int("subscribers", len(live)))
	for _, h := range live {
		b.safeCall(h, env)
	}
}

func (b *Bus) compact() {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.order[:0]
	for _, id := range b.order {
		if _, ok := b.handlers[id]; ok {
			kept = append(kept, id)
		}
	}
	b.order = kept
}

// safeCall keeps one failing handler from stopping delivery to the rest.
func (b *Bus) safeCall(h Handler, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				logger.String("event", env.Event.Name()),
				logger.Error(fmt.Errorf("%v", r)))
		}
	}()
	h(env)
}
