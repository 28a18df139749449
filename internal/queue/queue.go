// Package queue holds a small mutex-guarded ring used for the controller's
// recent status lines.
package queue

import "sync"

// Queue keeps the last limit items in push order, overwriting the oldest
// once full.
type Queue[T any] struct {
	mu   sync.Mutex
	buf  []T
	head int // index of the oldest item
	n    int
}

// NewBounded panics on a non-positive limit.
func NewBounded[T any](limit int) *Queue[T] {
	if limit <= 0 {
		panic("queue: bounded limit must be positive")
	}
	return &Queue[T]{buf: make([]T, limit)}
}

func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range items {
		if q.n == len(q.buf) {
			q.buf[q.head] = it
			q.head = (q.head + 1) % len(q.buf)
			continue
		}
		q.buf[(q.head+q.n)%len(q.buf)] = it
		q.n++
	}
}

// Snapshot copies the items, oldest first.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, q.n)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}
