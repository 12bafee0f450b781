// Package workpool spreads independent per-item work over a bounded number
// of goroutines while keeping results aligned with input order.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item on up to workers goroutines (one per CPU
// when workers <= 0). Each result lands at the index of its input, so the
// output order is independent of scheduling. The first error cancels the
// shared context and is returned; parent cancellation is reported even when
// every started item succeeded.
func Map[T, R any](parent context.Context, workers int, items []T, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workers)
	for i := range items {
		i := i
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, i, items[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
