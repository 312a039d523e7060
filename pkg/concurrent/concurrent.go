package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element with at most workers goroutines in
// flight. It stops scheduling once ctx is done or an action fails and returns
// the first error encountered. workers <= 1 runs sequentially in the caller's
// goroutine, in slice order.
func ForEach[T any](ctx context.Context, in []T, workers int, action func(context.Context, T) error) error {
	if workers <= 1 {
		for _, v := range in {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, v := range in {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return action(groupCtx, v)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Map applies fn to every element with bounded parallelism, preserving order.
func Map[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	indexes := make([]int, len(in))
	for i := range indexes {
		indexes[i] = i
	}
	err := ForEach(ctx, indexes, workers, func(ctx context.Context, i int) error {
		r, err := fn(ctx, in[i])
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
