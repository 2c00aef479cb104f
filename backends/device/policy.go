//go:build !nodevice

package device

import (
	"fmt"
	"strings"

	"github.com/gomlx/forall/backends"
	"github.com/pkg/errors"
)

// Policy runs loops on a device, one position per thread.
type Policy struct {
	// Device to run on. If nil, Default() is used.
	Device *Device

	// GroupSize is the number of threads per block. If 0, DefaultGroupSize is used.
	GroupSize int

	// Async launches return immediately; synchronize with Device.Synchronize, or by reading a reduction.
	Async bool

	// Atomic selects the atomic reduction strategy, instead of the default tree strategy.
	Atomic bool
}

var _ backends.Policy = Policy{}

// Executor implements backends.Policy.
func (p Policy) Executor() backends.Executor {
	if p.Device != nil {
		return p.Device
	}
	return Default()
}

// LaunchConfig implements backends.Policy.
func (p Policy) LaunchConfig() backends.LaunchConfig {
	return backends.LaunchConfig{GroupSize: p.GroupSize, Async: p.Async}
}

// ReduceStrategy implements backends.Policy.
func (p Policy) ReduceStrategy() backends.ReduceStrategy {
	if p.Atomic {
		return backends.ReduceAtomic
	}
	return backends.ReduceTree
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	groupSize := p.GroupSize
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	parts := []string{fmt.Sprintf("group=%d", groupSize)}
	if p.Async {
		parts = append(parts, "async")
	}
	if p.Atomic {
		parts = append(parts, "atomic")
	}
	return fmt.Sprintf("device(%s)", strings.Join(parts, ","))
}

// New constructs a device Policy from a configuration string.
//
// Options:
//
//   - "group=N": threads per block, defaults to DefaultGroupSize.
//   - "async": launches return immediately.
//   - "atomic": use atomic reductions instead of tree reductions.
//   - "memory=SIZE" (e.g. "512MiB"), "parallelism=N", "maxgroup=N": if any is given a new Device is
//     created with that configuration, otherwise the default device is used.
//
// Example: "device:group=128,async,memory=1GiB".
func New(config string) backends.Policy {
	p, err := NewWithOptions(config)
	if err != nil {
		panic(err)
	}
	return p
}

// NewWithOptions is like New, but returns an error instead of panicking.
func NewWithOptions(config string) (Policy, error) {
	opts, err := backends.ParseOptions(BackendName, config)
	if err != nil {
		return Policy{}, err
	}
	var p Policy
	if p.GroupSize, err = opts.Int("group", 0); err != nil {
		return Policy{}, err
	}
	if p.Async, err = opts.Bool("async"); err != nil {
		return Policy{}, err
	}
	if p.Atomic, err = opts.Bool("atomic"); err != nil {
		return Policy{}, err
	}
	devConfig := DefaultDeviceConfig()
	if devConfig.Memory, err = opts.Bytes("memory", devConfig.Memory); err != nil {
		return Policy{}, err
	}
	if devConfig.Parallelism, err = opts.Int("parallelism", devConfig.Parallelism); err != nil {
		return Policy{}, err
	}
	if devConfig.MaxGroupSize, err = opts.Int("maxgroup", devConfig.MaxGroupSize); err != nil {
		return Policy{}, err
	}
	if err = opts.CheckAllUsed(); err != nil {
		return Policy{}, err
	}
	if p.GroupSize < 0 || p.GroupSize > devConfig.MaxGroupSize {
		return Policy{}, errors.Errorf("backend %q: group=%d must be in [0, %d]", BackendName, p.GroupSize, devConfig.MaxGroupSize)
	}
	if devConfig != DefaultDeviceConfig() {
		p.Device = NewDevice(devConfig)
	}
	return p, nil
}
