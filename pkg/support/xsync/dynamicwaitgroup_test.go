package xsync

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicWaitGroup(t *testing.T) {
	wg := NewDynamicWaitGroup()
	wg.Wait() // Zero count returns immediately.

	var finished atomic.Int32
	wg.Add(1)
	go func() {
		// Adds more work while the main goroutine is waiting.
		wg.Add(2)
		for range 2 {
			go func() {
				time.Sleep(time.Millisecond)
				finished.Add(1)
				wg.Done()
			}()
		}
		finished.Add(1)
		wg.Done()
	}()
	wg.Wait()
	assert.Equal(t, int32(3), finished.Load())
	assert.Equal(t, 0, wg.Pending())

	require.Panics(t, func() { wg.Done() })
}
