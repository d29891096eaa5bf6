package queue

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("queue is closed")
)

// State describes the outcome of a non-blocking pop.
type State int

const (
	// Ready means a value was returned.
	Ready State = iota
	// Empty means nothing is queued right now but producers may still push.
	Empty
	// Closed means the queue was closed and every queued value has been consumed.
	Closed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// compactThreshold is the number of consumed slots at the front of the
// backing slice after which the live values are shifted down.
const compactThreshold = 64

// Queue is an unbounded multi-producer multi-consumer FIFO queue.
//
// Push never blocks: the queue grows as needed, so producers are never
// throttled by slow consumers. Consumers either poll with TryPop or park in
// Pop until a value arrives, the queue is closed, or their context ends.
//
// Closing the queue wakes every parked consumer at once. Values pushed before
// Close are still handed out; only after the queue is drained do consumers
// observe Closed / ErrClosed.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool

	// Notification channel for data (BUFFERED, NEVER CLOSED)
	notifyC chan struct{}

	// Notification channel for shutdown (UNBUFFERED, CLOSED ON SHUTDOWN)
	closeC chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		notifyC: make(chan struct{}, 1),
		closeC:  make(chan struct{}),
	}
}

// Push appends v to the tail of the queue.
// Returns ErrClosed if the queue has been closed.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.signal()
	return nil
}

// TryPop removes the head of the queue without blocking.
func (q *Queue[T]) TryPop() (T, State) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		if q.closed {
			return zero, Closed
		}
		return zero, Empty
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	q.compact()

	// A single wake-up token is buffered, so pass it on while work remains;
	// otherwise a second parked consumer could sleep through a pending value.
	if q.head < len(q.items) {
		q.signal()
	}
	return v, Ready
}

// Pop removes the head of the queue, blocking until a value is available.
// Returns ErrClosed once the queue is closed and drained, or ctx.Err() if the
// context ends first.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		v, st := q.TryPop()
		switch st {
		case Ready:
			return v, nil
		case Closed:
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.closeC:
		case <-q.notifyC:
		}
	}
}

// Close marks the queue as closed and wakes every blocked consumer.
// Closing an already closed queue is a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.closeC)
}

// IsClosed returns whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of values waiting in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

func (q *Queue[T]) signal() {
	select {
	case q.notifyC <- struct{}{}:
	default:
	}
}

// compact must be called with q.mu held.
func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}

	if q.head >= compactThreshold && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
