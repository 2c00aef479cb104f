//go:build !nodevice

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package device implements the accelerator backend: loops run as a grid of groups (blocks) of
// execution units (threads).
//
// The device is emulated in pure Go: blocks are scheduled on a pool of goroutines, the threads of a
// block run in order on the goroutine that owns the block, and device memory is a byte-limited
// resources.Pool. What matters is that the execution model is the accelerator's: one position per
// thread, reductions either atomic on one shared value or tree-combined per block and then over
// block partials kept in device scratch memory, and asynchronous launches ordered on a stream.
//
// The backend is compiled in unless the "nodevice" build tag is set. Code using Policy then fails
// to compile, which is the intended behavior: device availability is a capability of the build,
// not a runtime condition.
package device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/internal/workerspool"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BackendName to be used in FORALL_BACKEND to specify this backend.
const BackendName = "device"

const (
	// DefaultGroupSize is the number of threads per block used when the policy doesn't specify one.
	DefaultGroupSize = 256

	// DefaultMaxGroupSize is the default limit of threads per block.
	DefaultMaxGroupSize = 1024

	// DefaultMemory is the default device memory limit.
	DefaultMemory = 4 << 30
)

func init() {
	backends.Register(BackendName, New)
}

// Config of a Device.
type Config struct {
	// Parallelism is the soft limit of blocks running concurrently, see workerspool.Pool.SetMaxParallelism.
	Parallelism int

	// MaxGroupSize is the maximum number of threads per block.
	MaxGroupSize int

	// Memory is the device memory limit in bytes. 0 means unlimited.
	Memory int64
}

// DefaultDeviceConfig returns the configuration of the default device.
func DefaultDeviceConfig() Config {
	return Config{
		Parallelism:  runtime.NumCPU(),
		MaxGroupSize: DefaultMaxGroupSize,
		Memory:       DefaultMemory,
	}
}

// Device is an emulated accelerator. It implements backends.Executor and resources.Resource.
type Device struct {
	id     int
	config Config
	pool   *workerspool.Pool
	memory *resources.Pool
	stream *Stream
}

var (
	_ backends.Executor  = (*Device)(nil)
	_ resources.Resource = (*Device)(nil)

	muDevices   sync.Mutex
	numDevices  int
	defaultDev  *Device
	defaultOnce sync.Once
)

// NewDevice creates a new emulated device. Call Finalize when done.
func NewDevice(config Config) *Device {
	if config.MaxGroupSize <= 0 {
		config.MaxGroupSize = DefaultMaxGroupSize
	}
	muDevices.Lock()
	id := numDevices
	numDevices++
	muDevices.Unlock()

	d := &Device{id: id, config: config}
	d.pool = workerspool.New()
	d.pool.SetMaxParallelism(config.Parallelism)
	d.memory = resources.NewPool(fmt.Sprintf("device#%d", id), resources.DeviceSpace, config.Memory)
	d.stream = newStream(d)
	klog.V(1).Infof("device#%d: created with parallelism=%d, max group size=%d, memory=%s",
		id, config.Parallelism, config.MaxGroupSize, memoryString(config.Memory))
	return d
}

// Default returns the shared default device, created on first use.
func Default() *Device {
	defaultOnce.Do(func() {
		defaultDev = NewDevice(DefaultDeviceConfig())
	})
	return defaultDev
}

func memoryString(bytes int64) string {
	if bytes <= 0 {
		return "unlimited"
	}
	return humanize.IBytes(uint64(bytes))
}

// Name implements backends.Executor.
func (d *Device) Name() string { return BackendName }

// Description implements backends.Executor.
func (d *Device) Description() string {
	return fmt.Sprintf("Emulated accelerator device#%d (max group size %d, memory %s)",
		d.id, d.config.MaxGroupSize, memoryString(d.config.Memory))
}

// String implements fmt.Stringer.
func (d *Device) String() string { return fmt.Sprintf("device#%d", d.id) }

// Kind implements backends.Executor.
func (d *Device) Kind() backends.Kind { return backends.Device }

// Capabilities implements backends.Executor.
func (d *Device) Capabilities() backends.Capabilities {
	return backends.Capabilities{
		MaxGroupSize: d.config.MaxGroupSize,
		Async:        true,
		ReduceStrategies: map[backends.ReduceStrategy]bool{
			backends.ReduceSlots:  true,
			backends.ReduceAtomic: true,
			backends.ReduceTree:   true,
		},
	}
}

// Space implements resources.Resource.
func (d *Device) Space() resources.Space { return resources.DeviceSpace }

// Allocate implements resources.Resource: it reserves device memory.
func (d *Device) Allocate(bytes int64) (*resources.Allocation, error) {
	return d.memory.Allocate(bytes)
}

// Memory returns the device memory pool, mostly for introspection.
func (d *Device) Memory() *resources.Pool { return d.memory }

// Plan implements backends.Executor: one thread per position, in blocks of cfg.GroupSize threads.
//
// A group size larger than the device maximum is a configuration error, and it panics.
func (d *Device) Plan(n int, cfg backends.LaunchConfig) backends.Geometry {
	groupSize := cfg.GroupSize
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	if groupSize > d.config.MaxGroupSize {
		exceptions.Panicf("%s: group size %d larger than the device maximum %d", d, groupSize, d.config.MaxGroupSize)
	}
	groups := (n + groupSize - 1) / groupSize
	return backends.Geometry{
		N:         n,
		Groups:    groups,
		GroupSize: groupSize,
		Slots:     groups * groupSize,
		Async:     cfg.Async,
		Memory:    d,
		Executor:  d,
	}
}

// Launch implements backends.Executor.
//
// Synchronous launches first wait for pending asynchronous ones, so launches on a device are always
// executed in order. Asynchronous launches are queued on the device stream and Launch returns
// immediately: errors of asynchronous launches are reported by Synchronize.
func (d *Device) Launch(g backends.Geometry, body func(lane backends.Lane, pos int), parts ...backends.Participant) error {
	if g.Executor != d {
		exceptions.Panicf("%s: launching a geometry planned by %v", d, g.Executor)
	}
	if g.Async {
		d.stream.Submit(func() error { return d.run(g, body, parts) })
		return nil
	}
	d.Synchronize()
	return d.run(g, body, parts)
}

// run executes the kernel: blocks are split among workers, each worker runs its blocks in order.
func (d *Device) run(g backends.Geometry, body func(lane backends.Lane, pos int), parts []backends.Participant) error {
	if err := backends.BeginAll(g, parts); err != nil {
		return errors.WithMessagef(err, "%s: launch of %s failed", d, g)
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s: running %s", d, g)
	}
	numWorkers := d.config.Parallelism
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(g.Groups, numWorkers)
	d.pool.ForkJoin(numWorkers, func(worker int) {
		lastBlock := backends.FirstIndex(g.Groups, numWorkers, worker+1)
		for block := backends.FirstIndex(g.Groups, numWorkers, worker); block < lastBlock; block++ {
			base := block * g.GroupSize
			for rank := range g.GroupSize {
				pos := base + rank
				if pos >= g.N {
					break
				}
				body(backends.Lane{Group: block, Rank: rank, Slot: pos}, pos)
			}
			backends.GroupDoneAll(block, parts)
		}
	})
	backends.EndAll(parts)
	return nil
}

// Synchronize implements backends.Executor: it waits for all asynchronous launches.
//
// If an asynchronous launch failed (e.g. device out-of-memory while allocating reduction scratch)
// it panics with the error, since the results of the failed launch are lost.
func (d *Device) Synchronize() {
	if err := d.stream.Synchronize(); err != nil {
		panic(err)
	}
}

// Finalize implements backends.Executor. It waits for pending work and stops the device stream.
// The default device should not be finalized.
func (d *Device) Finalize() {
	d.stream.Close()
}
