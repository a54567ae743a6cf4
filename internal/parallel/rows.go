// Package parallel splits per-row work into contiguous bands and runs them
// as a fork-join group.
package parallel

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MinBand is the smallest number of rows handed to one goroutine.
const MinBand = 8

var workers atomic.Int32

// SetWorkers caps the number of concurrent bands. n <= 0 restores GOMAXPROCS.
func SetWorkers(n int) {
	if n < 0 {
		n = 0
	}
	workers.Store(int32(n))
}

// Workers reports the effective band concurrency.
func Workers() int {
	if n := int(workers.Load()); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Rows calls fn over [0, n) split into [start, end) bands and returns after
// every band has finished. Bands never overlap, so fn may write rows
// start..end-1 of a shared output without locking.
func Rows(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	w := Workers()
	if w <= 1 || n <= MinBand {
		fn(0, n)
		return
	}

	band := (n + w - 1) / w
	if band < MinBand {
		band = MinBand
	}

	var g errgroup.Group
	g.SetLimit(w)
	for start := 0; start < n; start += band {
		start, end := start, min(start+band, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
