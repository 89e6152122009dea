package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartialResult holds a value or an error from one of several parallel calls.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartialLimit runs fns with at most limit in flight and collects
// every result. Unlike errgroup.WithContext, one failure does not cancel the rest.
// A limit below 1 means unbounded.
func ParallelPartialLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range fns {
		g.Go(func() error {
			v, err := fn(ctx)
			results[i] = PartialResult[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
