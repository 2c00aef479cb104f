// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package seq implements the sequential backend: every position runs on the calling goroutine,
// in ascending order.
package seq

import (
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
)

// BackendName to be used in FORALL_BACKEND to specify this backend.
const BackendName = "seq"

func init() {
	backends.Register(BackendName, New)
}

// New returns the sequential Policy. The sequential backend takes no configuration.
func New(config string) backends.Policy {
	opts, err := backends.ParseOptions(BackendName, config)
	if err == nil {
		err = opts.CheckAllUsed()
	}
	if err != nil {
		panic(errors.WithMessage(err, "seq.New"))
	}
	return Policy{}
}

// Policy runs loops sequentially.
type Policy struct{}

var _ backends.Policy = Policy{}

// Executor implements backends.Policy.
func (Policy) Executor() backends.Executor { return executor }

// LaunchConfig implements backends.Policy.
func (Policy) LaunchConfig() backends.LaunchConfig { return backends.LaunchConfig{} }

// ReduceStrategy implements backends.Policy.
func (Policy) ReduceStrategy() backends.ReduceStrategy { return backends.ReduceSlots }

// String implements fmt.Stringer.
func (Policy) String() string { return "seq" }

var executor = &Executor{}

// Executor implements backends.Executor. It is stateless.
type Executor struct{}

var _ backends.Executor = (*Executor)(nil)

// Capabilities of the sequential executor.
var Capabilities = backends.Capabilities{
	MaxGroupSize: 1,
	NestedLaunch: true,
	ReduceStrategies: map[backends.ReduceStrategy]bool{
		backends.ReduceSlots: true,
	},
}

// Name implements backends.Executor.
func (e *Executor) Name() string { return BackendName }

// Description implements backends.Executor.
func (e *Executor) Description() string { return "Sequential execution on the calling goroutine" }

// Kind implements backends.Executor.
func (e *Executor) Kind() backends.Kind { return backends.Sequential }

// Capabilities implements backends.Executor.
func (e *Executor) Capabilities() backends.Capabilities { return Capabilities }

// Plan implements backends.Executor: one group with one unit and one slot.
func (e *Executor) Plan(n int, _ backends.LaunchConfig) backends.Geometry {
	return backends.Geometry{
		N:         n,
		Groups:    1,
		GroupSize: 1,
		Slots:     1,
		Memory:    resources.Host,
		Executor:  e,
	}
}

// Launch implements backends.Executor.
func (e *Executor) Launch(g backends.Geometry, body func(lane backends.Lane, pos int), parts ...backends.Participant) error {
	if err := backends.BeginAll(g, parts); err != nil {
		return err
	}
	var lane backends.Lane
	for pos := range g.N {
		body(lane, pos)
	}
	backends.GroupDoneAll(0, parts)
	backends.EndAll(parts)
	return nil
}

// Synchronize implements backends.Executor. Nothing is ever pending.
func (e *Executor) Synchronize() {}

// Finalize implements backends.Executor.
func (e *Executor) Finalize() {}
