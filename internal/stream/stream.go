// Package stream provides small in-process pub/sub primitives used by the
// paging, playback and save pipelines. A Value carries "latest state"
// semantics (new subscribers see the current value immediately), a
// Broadcaster carries transient events with no replay.
package stream

import "sync"

// Value is a latest-value stream. Setting a value conflates: a slow
// subscriber only ever observes the most recent state, never a backlog.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	has    bool
	closed bool
	nextID int
	subs   map[int]chan T
}

func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]chan T)}
}

// Set publishes a new value to all subscribers and stores it for future ones.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}

	v.cur = val
	v.has = true

	for _, ch := range v.subs {
		offer(ch, val)
	}
}

// Get returns the current value, and whether one has ever been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.has
}

// Subscribe registers a new subscriber. If a value has already been set it is
// delivered immediately. The returned cancel func is idempotent.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan T, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}

	id := v.nextID
	v.nextID++
	v.subs[id] = ch

	if v.has {
		ch <- v.cur
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if _, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close terminates the stream. Subsequent Sets are ignored and all
// subscriber channels are closed.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}

// Broadcaster fans transient events out to all current subscribers.
// Events published before a subscription are not replayed.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	closed bool
	nextID int
	subs   map[int]chan T
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Publish delivers an event to every subscriber. Subscribers that have
// fallen behind lose their oldest buffered event rather than blocking the
// publisher.
func (b *Broadcaster[T]) Publish(ev T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		offer(ch, ev)
	}
}

// Subscribe registers a subscriber with a small buffer. The cancel func is
// idempotent.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 8)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close terminates the broadcaster and closes all subscriber channels.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// offer pushes val without blocking, evicting the oldest buffered element
// if the channel is full.
func offer[T any](ch chan T, val T) {
	select {
	case ch <- val:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- val:
		default:
		}
	}
}
