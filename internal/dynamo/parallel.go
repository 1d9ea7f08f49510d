package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a requested worker count for n items: requested <= 0
// means one per CPU, and the result is always within [1, max(n, 1)].
func Workers(n, requested int) int {
	w := requested
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// ParallelFor splits [0, n) into contiguous chunks of ceil(n/workers) items
// and runs fn on each chunk in its own goroutine. chunk is the index of the
// chunk, so callers can collect per-chunk results without locking. It
// returns after every chunk has finished.
func ParallelFor(n, workers int, fn func(chunk, start, end int)) {
	if n <= 0 {
		return
	}
	workers = Workers(n, workers)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)

		g.Go(func() error {
			fn(w, start, end)
			return nil
		})
	}
	_ = g.Wait()
}
