package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](2)
	for i := range 5 {
		q.Push(i)
	}
	require.Equal(t, 5, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head)

	for i := range 3 {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	q.Push(5)
	q.Push(6)

	var rest []int
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		rest = append(rest, v)
	}
	assert.Equal(t, []int{3, 4, 5, 6}, rest)
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue[string](0)
	q.Push("a")
	q.Push("b")

	assert.Equal(t, 2, q.Clear())
	assert.Equal(t, 0, q.Len())
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestIterator_Chain(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6})

	even := it.Filter(func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4, 6}, even.Collect())
	assert.Equal(t, 3, even.Count())

	v, ok := it.Find(func(v int) bool { return v > 4 })
	require.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = it.Find(func(v int) bool { return v > 10 })
	assert.False(t, ok)

	squares := Map(even, func(v int) int { return v * v })
	assert.Equal(t, []int{4, 16, 36}, squares.Collect())
}
