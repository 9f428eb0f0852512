package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/thunder/pkg/sequence"
)

func TestConcurrent_RunsAll(t *testing.T) {
	var sum atomic.Int64
	err := Concurrent(context.Background(), sequence.From([]int{1, 2, 3, 4}), func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), sum.Load())
}

func TestLimited_FirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Limited(context.Background(), 2, sequence.From([]int{1, 2, 3}), func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}
