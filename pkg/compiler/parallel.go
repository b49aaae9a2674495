package compiler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProcessFiles fans paths out across a bounded worker pool and fans the
// outcomes back in behind one mutex. Per-file failures land in the result
// map rather than cancelling the batch: the partial-failure policy is
// deliberate, the caller re-triggers on the next change event.
func ProcessFiles[T any](ctx context.Context, paths []string, workers int, fn func(context.Context, string) (T, error)) map[string]Outcome[T] {
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	outcomes := make(map[string]Outcome[T], len(paths))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, path := range paths {
		eg.Go(func() error {
			value, err := fn(gctx, path)
			mu.Lock()
			outcomes[path] = Outcome[T]{Value: value, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors; failures are outcomes
	return outcomes
}

// Outcome is one file's result or failure.
type Outcome[T any] struct {
	Value T
	Err   error
}
