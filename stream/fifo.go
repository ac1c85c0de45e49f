package stream

import "math/bits"

// fifo is a ring-buffer queue backing Prefetch's look-ahead buffer. The
// capacity stays a power of two so the index wrap is a single mask.
type fifo[T any] struct {
	buf  []T
	head int
	size int
}

func newFifo[T any](capacity int) *fifo[T] {
	if capacity < 1 {
		capacity = 1
	}
	capacity = 1 << uint(bits.Len(uint(capacity-1)))
	return &fifo[T]{buf: make([]T, capacity)}
}

func (q *fifo[T]) push(v T) {
	if q.size == len(q.buf) {
		grown := make([]T, len(q.buf)*2)
		n := copy(grown, q.buf[q.head:])
		copy(grown[n:], q.buf[:q.head])
		q.buf = grown
		q.head = 0
	}
	q.buf[(q.head+q.size)&(len(q.buf)-1)] = v
	q.size++
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero // release the reference
	q.head = (q.head + 1) & (len(q.buf) - 1)
	q.size--
	return v, true
}
