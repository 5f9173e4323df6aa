// Package parallel splits row ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides [0, items) into contiguous chunks, one per available
// processor, and calls fn(start, end) for each chunk concurrently. It returns
// once every chunk is done. fn must only touch rows inside its own range.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items <= threshold, and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
