// Package parallel provides chunked fan-out helpers for data-parallel loops
// over correspondence sets. Work items are independent and side-effect free,
// so no ordering is guaranteed between chunks.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides the specified total number (items) according to the
// number of CPU cores, and executes fn in parallel for each range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// Number of items each worker handles (ceiling division).
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when the number of items exceeds
// the threshold; below it the function runs sequentially on the full range.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}

// Reduce runs fn over chunks of [0, items) and sums the per-chunk accumulator
// vectors into a single []float64 of length width. Each worker receives its own
// zeroed accumulator, so fn never needs locking; the merge is sequential.
//
// Floating-point summation order differs between worker splits, so results may
// differ from a sequential sum in the last bits. Callers needing bit-exact
// reproducibility should run with a single chunk.
func Reduce(items, width int, fn func(start, end int, acc []float64)) []float64 {
	out := make([]float64, width)
	if items == 0 {
		return out
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	locals := make([][]float64, 0, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		acc := make([]float64, width)
		locals = append(locals, acc)

		wg.Add(1)
		go func(s, e int, acc []float64) {
			defer wg.Done()
			fn(s, e, acc)
		}(start, end, acc)
	}

	wg.Wait()

	for _, acc := range locals {
		for j, v := range acc {
			out[j] += v
		}
	}
	return out
}

// ReduceWithThreshold performs the reduction sequentially when the number of
// items is at or below the threshold.
func ReduceWithThreshold(items, threshold, width int, fn func(start, end int, acc []float64)) []float64 {
	if items <= threshold {
		out := make([]float64, width)
		fn(0, items, out)
		return out
	}
	return Reduce(items, width, fn)
}
