package dispatch

import "sync"

// Queue is an unbounded multi-producer FIFO drained by a single consumer.
//
// Contract:
//   - Push MUST NOT block beyond the mutex (no capacity limit).
//   - TryPop MUST NOT block: it returns immediately when the queue is empty.
//   - FIFO order is preserved across concurrent producers (each Push is
//     atomic; interleaving between producers is whatever the lock decides).
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest element, or ok=false when empty.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		// Reset so burst capacity is reused instead of growing forever.
		q.items = q.items[:0]
		q.head = 0
		return v, false
	}
	v = q.items[q.head]
	var zero T
	q.items[q.head] = zero // release the reference early
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v, true
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
