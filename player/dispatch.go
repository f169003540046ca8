package player

import (
	"sync"

	"github.com/samber/lo"
)

// Subscription identifies a handler registration.
type Subscription uint64

type subscriber struct {
	id      Subscription
	event   Event
	handler Handler
}

// Dispatcher is an event registry adapters can embed to implement On and Off.
// The zero value is ready to use.
type Dispatcher struct {
	mu     sync.Mutex
	nextID Subscription
	subs   []subscriber
}

// On implements Adapter.
func (d *Dispatcher) On(e Event, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.subs = append(d.subs, subscriber{id: d.nextID, event: e, handler: h})
	return d.nextID
}

// Off implements Adapter.
func (d *Dispatcher) Off(s Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs = lo.Reject(d.subs, func(sub subscriber, _ int) bool {
		return sub.id == s
	})
}

// Emit calls every handler registered for e, in registration order.
// Handlers are called without the registry lock held.
func (d *Dispatcher) Emit(e Event) {
	d.mu.Lock()
	handlers := lo.FilterMap(d.subs, func(sub subscriber, _ int) (Handler, bool) {
		return sub.handler, sub.event == e
	})
	d.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
