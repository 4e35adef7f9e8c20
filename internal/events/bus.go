package events

import (
	"sync"
)

// Handler receives events on the emitting goroutine
type Handler func(Event)

// Emitter is what the protocol engine needs from a bus
type Emitter interface {
	Emit(Event)
}

type subscription struct {
	id      int
	handler Handler
}

// Bus delivers events to subscribers in subscription order. Emit is
// synchronous: when it returns, every subscriber has seen the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every subscriber
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Channel subscribes a buffered channel. Emit blocks once the buffer is
// full, so the reader must keep draining until it calls the returned
// cancel function. The channel is not closed by cancel.
func (b *Bus) Channel(size int) (<-chan Event, func()) {
	ch := make(chan Event, size)
	done := make(chan struct{})

	unsubscribe := b.Subscribe(func(e Event) {
		select {
		case ch <- e:
		case <-done:
		}
	})

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}
}

// Recorder collects events in memory. Tests use it as an Emitter.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit stores e
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset forgets recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
