// Package xsync implements synchronization primitives used by the executors.
package xsync

import (
	"sync"

	"github.com/pkg/errors"
)

// DynamicWaitGroup is a WaitGroup-like counter that can be incremented while someone is waiting on it,
// as device streams do: launches are enqueued while another goroutine may be synchronizing.
//
// Wait returns once the counter is observed at zero.
type DynamicWaitGroup struct {
	mu    sync.Mutex
	count int
	idle  chan struct{} // Closed while count is zero.
}

// NewDynamicWaitGroup creates a DynamicWaitGroup with a zero counter.
func NewDynamicWaitGroup() *DynamicWaitGroup {
	wg := &DynamicWaitGroup{idle: make(chan struct{})}
	close(wg.idle)
	return wg
}

// Add changes the counter by delta. It panics if the counter becomes negative.
func (wg *DynamicWaitGroup) Add(delta int) {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	previous := wg.count
	wg.count += delta
	switch {
	case wg.count < 0:
		wg.count = previous
		panic(errors.Errorf("DynamicWaitGroup: negative counter"))
	case previous == 0 && wg.count > 0:
		wg.idle = make(chan struct{})
	case previous > 0 && wg.count == 0:
		close(wg.idle)
	}
}

// Done decrements the counter by one.
func (wg *DynamicWaitGroup) Done() {
	wg.Add(-1)
}

// Pending returns the current counter.
func (wg *DynamicWaitGroup) Pending() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return wg.count
}

// Wait blocks until the counter is zero.
func (wg *DynamicWaitGroup) Wait() {
	for {
		wg.mu.Lock()
		idle, count := wg.idle, wg.count
		wg.mu.Unlock()
		if count == 0 {
			return
		}
		<-idle
	}
}
