// Package sequence provides a small chainable iterator over iter.Seq and a
// FIFO queue.
package sequence

import "iter"

// Iterator is an immutable, chainable wrapper around iter.Seq.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From iterates over a slice.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// FromSeq wraps an existing sequence.
func FromSeq[T any](seq iter.Seq[T]) *Iterator[T] {
	return &Iterator[T]{seq: seq}
}

func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

// Collect exhausts the iterator into a slice.
func (i *Iterator[T]) Collect() []T {
	var out []T
	for v := range i.seq {
		out = append(out, v)
	}
	return out
}

// Filter keeps the elements matching pred.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if pred(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// Find returns the first element matching pred.
func (i *Iterator[T]) Find(pred func(T) bool) (T, bool) {
	for v := range i.seq {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}

// Map transforms every element.
func Map[T, S any](i *Iterator[T], fn func(T) S) *Iterator[S] {
	return &Iterator[S]{
		seq: func(yield func(S) bool) {
			for v := range i.seq {
				if !yield(fn(v)) {
					return
				}
			}
		},
	}
}
