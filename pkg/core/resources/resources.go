// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package resources defines the memory spaces loops and their data live in.
//
// A Resource only accounts for memory: the engine keeps data in ordinary Go slices, and a Resource
// tells where that data is meant to be resident (host or device) and whether there is room for it.
// Allocation failures are reported as errors wrapping ErrOutOfMemory, so callers can tell them
// apart from contract violations.
package resources

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrOutOfMemory is wrapped by every allocation failure.
var ErrOutOfMemory = errors.New("out of memory")

// Space identifies the memory space of a Resource.
type Space int

const (
	// HostSpace is ordinary process memory.
	HostSpace Space = iota

	// DeviceSpace is memory resident on an accelerator.
	DeviceSpace
)

// String implements fmt.Stringer.
func (s Space) String() string {
	switch s {
	case HostSpace:
		return "host"
	case DeviceSpace:
		return "device"
	default:
		return "unknown"
	}
}

// Resource is a memory space that can hand out reservations.
type Resource interface {
	// Space where allocations of this resource live.
	Space() Space

	// Allocate reserves the given number of bytes. It returns an error wrapping ErrOutOfMemory if it
	// cannot be satisfied.
	Allocate(bytes int64) (*Allocation, error)
}

// Allocation is a reservation of memory in a Resource. Release it when done; releasing twice is a no-op.
type Allocation struct {
	bytes   int64
	release func(bytes int64)
	once    sync.Once
}

// NewAllocation creates an Allocation of the given size that calls release (if not nil) once when released.
// It is meant for Resource implementations.
func NewAllocation(bytes int64, release func(bytes int64)) *Allocation {
	return &Allocation{bytes: bytes, release: release}
}

// Bytes reserved by the allocation.
func (a *Allocation) Bytes() int64 {
	if a == nil {
		return 0
	}
	return a.bytes
}

// Release returns the reservation to its Resource.
func (a *Allocation) Release() {
	if a == nil {
		return
	}
	a.once.Do(func() {
		if a.release != nil {
			a.release(a.bytes)
		}
	})
}

// Pool is a Resource with an optional limit on the number of bytes in use at any time.
// Both the host resource and device memories are Pools.
type Pool struct {
	name  string
	space Space

	mu    sync.Mutex
	limit int64 // <= 0 means unlimited.
	inUse int64
	peak  int64
}

// NewPool creates a Pool for the given space. A limit <= 0 means unlimited.
func NewPool(name string, space Space, limit int64) *Pool {
	return &Pool{name: name, space: space, limit: limit}
}

// Host is the default, unlimited, host memory resource.
var Host = NewPool("host", HostSpace, 0)

// Space implements Resource.
func (p *Pool) Space() Space { return p.space }

// Name of the pool, used in logs and errors.
func (p *Pool) Name() string { return p.name }

// Allocate implements Resource.
func (p *Pool) Allocate(bytes int64) (*Allocation, error) {
	if bytes < 0 {
		return nil, errors.Errorf("%s: invalid allocation of %d bytes", p.name, bytes)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit > 0 && p.inUse+bytes > p.limit {
		return nil, errors.Wrapf(ErrOutOfMemory, "%s: allocating %s with %s of %s in use",
			p.name, humanize.IBytes(uint64(bytes)), humanize.IBytes(uint64(p.inUse)), humanize.IBytes(uint64(p.limit)))
	}
	p.inUse += bytes
	p.peak = max(p.peak, p.inUse)
	if klog.V(2).Enabled() {
		klog.Infof("%s: allocated %s (%s in use)", p.name, humanize.IBytes(uint64(bytes)), humanize.IBytes(uint64(p.inUse)))
	}
	return NewAllocation(bytes, p.free), nil
}

func (p *Pool) free(bytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse -= bytes
}

// InUse returns the number of bytes currently reserved.
func (p *Pool) InUse() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Peak returns the largest number of bytes reserved at once so far.
func (p *Pool) Peak() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// Limit returns the pool limit, 0 if unlimited.
func (p *Pool) Limit() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return max(p.limit, 0)
}
