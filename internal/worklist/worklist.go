// Package worklist provides the FIFO queue driving the fixpoint loops of the
// tabling core. Both the invalidation walk and the monotonic propagator are
// worklist algorithms: items are processed in arrival order and processing an
// item may enqueue further items, terminating when the queue drains.
package worklist

// Queue is a FIFO queue with amortized O(1) push and pop. The zero value is
// not usable; construct with New.
type Queue[T any] struct {
	items []T
	head  int
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends an item to the tail.
func (q *Queue[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the head item. The second result is false when the
// queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero // release for GC
	q.head++

	// Compact once the consumed prefix dominates the backing array.
	if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		for i := n; i < len(q.items); i++ {
			q.items[i] = zero
		}
		q.items = q.items[:n]
		q.head = 0
	}
	return v, true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}
