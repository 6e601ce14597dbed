package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MapLimit runs fn over items with at most limit concurrent workers and
// returns results in input order. The first error cancels the remaining work
// and is returned without partial results.
func MapLimit[T, R any](
	ctx context.Context,
	items []T,
	limit int,
	fn func(ctx context.Context, item T, index int) (R, error),
) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if limit <= 0 {
		limit = 1
	}

	var next atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	for range min(limit, len(items)) {
		group.Go(func() error {
			for {
				idx := int(next.Add(1) - 1)
				if idx >= len(items) {
					return nil
				}
				if err := groupCtx.Err(); err != nil {
					return err
				}
				result, err := callRecovered(groupCtx, fn, items[idx], idx)
				if err != nil {
					return err
				}
				results[idx] = result
			}
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// callRecovered turns a panic in fn into an error so one bad item cannot take
// down the process.
func callRecovered[T, R any](
	ctx context.Context,
	fn func(ctx context.Context, item T, index int) (R, error),
	item T,
	index int,
) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("item %d panicked: %v", index, r)
		}
	}()
	return fn(ctx, item, index)
}
