// Package shaping runs a batch of tasks under a concurrency cap with a
// minimum delay between task submissions. The cap alone is not enough for
// upstreams that watch request timing: four requests fired in the same
// millisecond still look like a burst, so submissions are spaced out too.
package shaping

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool describes the shape of a run: at most Limit tasks in flight and at
// least Spacing between consecutive submissions.
type Pool struct {
	Limit   int64
	Spacing time.Duration
}

// Run executes task(ctx, i) for i in [0, n). Task errors are recorded but do
// not stop the remaining tasks; the first one is returned after all tasks
// finish. A canceled context stops further submissions and returns ctx.Err().
func (p Pool) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 1
	}

	sem := semaphore.NewWeighted(limit)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < n; i++ {
		if i > 0 && p.Spacing > 0 {
			t := time.NewTimer(p.Spacing)
			select {
			case <-ctx.Done():
				t.Stop()
				wg.Wait()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			if err := task(ctx, i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
