package sequence

// Queue is an unbounded FIFO backed by a ring buffer. It is not safe for
// concurrent use; callers guard it with their own lock.
type Queue[T any] struct {
	items      []T
	head, size int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{items: make([]T, capacity)}
}

func (q *Queue[T]) Len() int { return q.size }

func (q *Queue[T]) Push(value T) {
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = value
	q.size++
}

// Pop removes the oldest element.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return value, true
}

func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	return q.items[q.head], true
}

// Clear drops every element and returns how many were dropped.
func (q *Queue[T]) Clear() int {
	n := q.size
	clear(q.items)
	q.head, q.size = 0, 0
	return n
}

func (q *Queue[T]) grow() {
	next := make([]T, max(2*len(q.items), 1))
	for i := 0; i < q.size; i++ {
		next[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items, q.head = next, 0
}
