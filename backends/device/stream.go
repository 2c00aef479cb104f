//go:build !nodevice

package device

import (
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/pkg/support/xsync"
	"github.com/pkg/errors"
)

// Stream executes asynchronous launches of a device in submission order.
type Stream struct {
	device  *Device
	tasks   chan func() error
	pending *xsync.DynamicWaitGroup

	mu     sync.Mutex
	err    error // First error of an asynchronous task, reported by Synchronize.
	closed bool
}

func newStream(d *Device) *Stream {
	s := &Stream{
		device:  d,
		tasks:   make(chan func() error, 64),
		pending: xsync.NewDynamicWaitGroup(),
	}
	go s.worker()
	return s
}

func (s *Stream) worker() {
	for task := range s.tasks {
		err := exceptions.TryCatch[error](func() {
			if err := task(); err != nil {
				panic(err)
			}
		})
		if err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
		s.pending.Done()
	}
}

// Submit queues task to run after all previously submitted tasks.
// Errors returned or panicked by the task are reported by the next Synchronize.
func (s *Stream) Submit(task func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		exceptions.Panicf("%s: launch on a finalized device", s.device)
	}
	// Close waits for pending tasks before closing the channel, so once counted the send is safe.
	s.pending.Add(1)
	s.mu.Unlock()
	s.tasks <- task
}

// Synchronize waits until all submitted tasks finished, and returns (and clears) the first error
// of an asynchronous task, if any.
func (s *Stream) Synchronize() error {
	s.pending.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	if err != nil {
		return errors.WithMessagef(err, "%s: asynchronous launch failed", s.device)
	}
	return nil
}

// Pending returns the number of tasks submitted and not yet finished.
func (s *Stream) Pending() int { return s.pending.Pending() }

// Close waits for pending tasks and stops the stream worker.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.pending.Wait()
	close(s.tasks)
}
