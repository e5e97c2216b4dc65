package utils

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// GetInParallel calls `f` for every index in [0, n) using at most `workers` goroutines (ParallelFactor
// when `workers` is not positive) and returns
// the results in index order. The first failure cancels the context handed to the remaining calls;
// all failures are combined into the returned error. A panic in `f` is reported as an error.
func GetInParallel[T any](
	ctx context.Context,
	n, workers int,
	f func(ctx context.Context, i int) (T, error),
) ([]T, error) {
	if workers <= 0 {
		workers = ParallelFactor
	}
	if workers > n {
		workers = n
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg            sync.WaitGroup
		bigError      error
		bigErrorMutex sync.Mutex
	)
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		if bigError == nil || !errors.Is(err, context.Canceled) {
			bigError = multierr.Combine(bigError, err)
		}
	}

	results := make([]T, n)
	work := make(chan int)

	helper := func(i int) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				storeError(fmt.Errorf("got panic getting something in parallel: %v", thePanic))
				cancel()
			}
		}()
		value, err := f(ctx, i)
		if err != nil {
			storeError(err)
			cancel()
			return
		}
		results[i] = value
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			for i := range work {
				helper(i)
			}
		})
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	if bigError == nil && ctx.Err() != nil {
		// Cancelled by the caller before any failure.
		bigError = ctx.Err()
	}
	if bigError != nil {
		return nil, bigError
	}
	return results, nil
}
