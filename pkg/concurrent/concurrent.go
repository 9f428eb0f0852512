package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/thunder/pkg/sequence"
)

// Concurrent runs action for each element of the iterator in its own
// goroutine and waits for all of them. The context passed to action is
// cancelled as soon as one action fails; the first error is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], action func(context.Context, T) error) error {
	return Limited(ctx, -1, i, action)
}

// Limited is Concurrent with at most limit actions in flight. A negative
// limit means no limit.
func Limited[T any](ctx context.Context, limit int, i *sequence.Iterator[T], action func(context.Context, T) error) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for value := range i.Seq() {
		group.Go(func() error {
			return action(ctx, value)
		})
	}

	return group.Wait()
}
