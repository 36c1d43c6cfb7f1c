package channels

import (
	"sync"
	"sync/atomic"
)

type hubSubscriber[T any] struct {
	ch      chan T
	dropped atomic.Int32
}

// Hub publishes values to a dynamic set of subscribers.
//
// Publish never blocks: each subscriber has its own buffered channel and a
// slow subscriber loses its oldest buffered values rather than stalling the
// publisher. Subscribers may join and leave at any time.
type Hub[T any] struct {
	mu      sync.Mutex
	subs    map[*hubSubscriber[T]]struct{}
	closed  bool
	last    T
	hasLast bool
}

// NewHub returns an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*hubSubscriber[T]]struct{})}
}

// Subscribe registers a new subscriber with the given buffer size (minimum 1).
// The returned function unsubscribes and closes the channel; it is safe to
// call more than once. Subscribing to a closed hub returns a closed channel.
func (h *Hub[T]) Subscribe(buf int) (<-chan T, func()) {
	return h.subscribe(buf, false)
}

// SubscribeLatest is like Subscribe but the channel starts with the most
// recently published value, if any. On a closed hub that value is still
// delivered before the channel closes.
func (h *Hub[T]) SubscribeLatest(buf int) (<-chan T, func()) {
	return h.subscribe(buf, true)
}

func (h *Hub[T]) subscribe(buf int, replay bool) (<-chan T, func()) {
	if buf < 1 {
		buf = 1
	}

	sub := &hubSubscriber[T]{ch: make(chan T, buf)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if replay && h.hasLast {
		sub.ch <- h.last
	}

	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	h.subs[sub] = struct{}{}

	return sub.ch, func() { h.remove(sub) }
}

// Publish delivers msg to every current subscriber.
func (h *Hub[T]) Publish(msg T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.last, h.hasLast = msg, true

	for sub := range h.subs {
		if SendLatest(sub.ch, msg) {
			sub.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Dropped returns the total number of values discarded across active subscribers.
func (h *Hub[T]) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for sub := range h.subs {
		total += int(sub.dropped.Load())
	}

	return total
}

func (h *Hub[T]) remove(sub *hubSubscriber[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}

	delete(h.subs, sub)
	close(sub.ch)
}
