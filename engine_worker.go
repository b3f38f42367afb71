// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// defaultMapWorkers bounds the per-item fan-out [TransformCache.ListMap]
// uses to recompute cache misses during a coalesced batch (§4.3.3's
// transform-cache optimization): large lists get real parallelism, but a
// pathological `List/map` over a huge list can't spawn one goroutine per
// item.
const defaultMapWorkers = 8

// ParallelMap runs f over items bounded to at most maxWorkers concurrent
// calls, preserving the 1:1 index correspondence between items and
// results, and returns the first error encountered (others are discarded,
// matching the engine's fail-fast-on-first-error convention used
// throughout the combinator library).
func ParallelMap[T, R any](ctx context.Context, maxWorkers int, items []T, f func(T) (R, error)) ([]R, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	sem := semaphore.NewWeighted(int64(maxWorkers))
	results := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			continue
		}
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release(1)
			r, err := f(item)
			results[i] = r
			errs[i] = err
		}(i, item)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
