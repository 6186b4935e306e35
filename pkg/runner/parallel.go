package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"digital.vasic.harness/pkg/workflow"
)

// runBounded calls fn for indexes 0..n-1 with at most limit
// running at once. Results keep index order. Work not started
// before ctx is cancelled is dropped and ctx's error returned.
func runBounded(
	ctx context.Context,
	n, limit int,
	fn func(ctx context.Context, i int) ([]*workflow.Result, error),
) ([][]*workflow.Result, error) {
	if limit <= 0 {
		limit = 1
	}

	ordered := make([][]*workflow.Result, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs, err := fn(gctx, i)
			ordered[i] = rs
			return err
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return ordered, err
}
