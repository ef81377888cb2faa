package uwimg

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerTask keeps small images on a single goroutine.
const minRowsPerTask = 16

// parallelRows splits [0, n) into contiguous chunks and runs fn on each
// chunk concurrently. fn must only write to rows inside its chunk.
func parallelRows(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n/minRowsPerTask {
		workers = n / minRowsPerTask
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// parallelChannels runs fn once per channel index concurrently.
func parallelChannels(c int, fn func(ch int)) {
	if c <= 1 {
		for ch := 0; ch < c; ch++ {
			fn(ch)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for ch := 0; ch < c; ch++ {
		g.Go(func() error {
			fn(ch)
			return nil
		})
	}
	_ = g.Wait()
}
