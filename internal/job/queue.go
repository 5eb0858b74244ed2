// Package job implements the coroutine-based scheduler core: a bounded
// ready queue, a fixed-capacity wait list, an atomic fan-in counter, and the
// worker/driver state machine that ties them together.
package job

// Queue is a bounded, capacity-fixed multi-producer/multi-consumer queue.
//
// It is built on a buffered channel rather than hand-rolled atomic index
// arithmetic. A buffered channel already gives the "reserve a slot, fail if
// full" contract this package needs without the index-drift hazard a
// fetch-add-on-both-success-and-failure scheme invites; see DESIGN.md for the
// rationale. Ordering under contention is therefore FIFO-ish but not
// guaranteed strictly FIFO once multiple goroutines race Push/Pop, which
// matches the relaxation this queue is required to tolerate.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue with the given fixed capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push attempts to enqueue t, returning false immediately if the queue is
// at capacity.
func (q *Queue[T]) Push(t T) bool {
	select {
	case q.ch <- t:
		return true
	default:
		return false
	}
}

// Pop attempts to dequeue a value, returning false immediately if the queue
// is empty.
func (q *Queue[T]) Pop() (T, bool) {
	select {
	case t := <-q.ch:
		return t, true
	default:
		var zero T
		return zero, false
	}
}

// PopWait blocks until a value is available or the done channel is closed,
// whichever happens first. ok is false only when done fired before a value
// arrived.
func (q *Queue[T]) PopWait(done <-chan struct{}) (T, bool) {
	select {
	case t := <-q.ch:
		return t, true
	case <-done:
		var zero T
		return zero, false
	}
}

// Len reports the number of values currently queued. It is a snapshot and
// may be stale the instant it is read under concurrent use.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap reports the queue's fixed capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
