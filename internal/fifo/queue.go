// Package fifo provides an unbounded, closable multi-producer queue.
//
// Producers never block: Push appends under a mutex and wakes the consumer.
// Consumers block in Pop until a value arrives or the queue is closed and
// drained.
package fifo

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Push and Close once the queue has been closed.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO safe for concurrent use.
// The zero value is not usable; call New.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v. It returns ErrClosed if the queue was closed.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.cond.Signal()
	return nil
}

// PushClose appends v as the final element and closes the queue in one step,
// so no producer can slip a value in behind it.
func (q *Queue[T]) PushClose(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.closed = true
	q.cond.Broadcast()
	return nil
}

// Pop removes and returns the oldest value, blocking while the queue is
// empty and open. ok is false once the queue is closed and drained.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	if q.head == len(q.items) {
		return v, false
	}
	return q.popLocked(), true
}

// TryPop is the non-blocking variant of Pop.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		return v, false
	}
	return q.popLocked(), true
}

func (q *Queue[T]) popLocked() T {
	var zero T
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		// Reuse the backing array once drained.
		q.items = q.items[:0]
		q.head = 0
	}
	return v
}

// Close marks the queue closed. Values already queued can still be popped.
// It returns ErrClosed on the second call.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.closed = true
	q.cond.Broadcast()
	return nil
}

// Drain closes the queue (if still open) and returns every value left in it.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	rest := make([]T, len(q.items)-q.head)
	copy(rest, q.items[q.head:])
	q.items = nil
	q.head = 0
	q.cond.Broadcast()
	return rest
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Closed reports whether Close, PushClose or Drain has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
