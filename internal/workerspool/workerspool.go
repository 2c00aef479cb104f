// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements the pool of goroutines shared by the host and device executors.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool limits the number of goroutines running loop partitions (host) or blocks (device).
//
// Work that can't get a goroutine is run inline by the caller, so nested loops never deadlock
// waiting for workers held by their own parents.
type Pool struct {
	// maxParallelism is a soft target: up to goroutineToParallelismRatio*maxParallelism goroutines
	// run at once, plus one per worker asleep in a join.
	maxParallelism int

	running  atomic.Int32
	sleeping atomic.Int32
}

// New returns a Pool with the default parallelism, runtime.NumCPU().
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism != 0).
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// MaxParallelism returns the soft limit of parallel work.
// 0 means parallelism is disabled, and -1 that it is unlimited.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the soft limit of parallel work, see MaxParallelism.
//
// It should only be changed before any work starts.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

const goroutineToParallelismRatio = 2

// capacity returns the current number of goroutines allowed, or -1 if unlimited.
func (w *Pool) capacity() int32 {
	if w.maxParallelism < 0 {
		return -1
	}
	if w.maxParallelism == 0 {
		return 0
	}
	return int32(goroutineToParallelismRatio*w.maxParallelism) + w.sleeping.Load()
}

// reserve takes one goroutine slot, if available.
func (w *Pool) reserve() bool {
	for {
		limit := w.capacity()
		current := w.running.Load()
		if limit >= 0 && current >= limit {
			return false
		}
		if w.running.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// StartIfAvailable runs task in a new goroutine if the pool has room for it, and returns whether it did.
//
// It's up to the caller to wait for the task to finish.
func (w *Pool) StartIfAvailable(task func()) bool {
	if !w.reserve() {
		return false
	}
	go func() {
		defer w.running.Add(-1)
		task()
	}()
	return true
}

// WorkerIsAsleep tells the pool the calling worker is blocked waiting for others: it frees one extra
// slot until WorkerRestarted is called.
func (w *Pool) WorkerIsAsleep() {
	w.sleeping.Add(1)
}

// WorkerRestarted undoes WorkerIsAsleep.
func (w *Pool) WorkerRestarted() {
	w.sleeping.Add(-1)
}

// ForkJoin runs task(i) for i in [0, n) and returns when all finished.
//
// Tasks get their own goroutine when one is available and run inline on the caller otherwise. The last task
// always runs on the caller. While waiting for the forked tasks the caller counts as asleep.
func (w *Pool) ForkJoin(n int, task func(i int)) {
	if n <= 0 {
		return
	}
	if n == 1 || !w.IsEnabled() {
		for i := range n {
			task(i)
		}
		return
	}
	var wg sync.WaitGroup
	for i := range n - 1 {
		wg.Add(1)
		started := w.StartIfAvailable(func() {
			defer wg.Done()
			task(i)
		})
		if !started {
			task(i)
			wg.Done()
		}
	}
	task(n - 1)
	w.WorkerIsAsleep()
	wg.Wait()
	w.WorkerRestarted()
}
