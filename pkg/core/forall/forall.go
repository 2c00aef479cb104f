// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package forall is the dispatch engine: it applies a loop body to every index of a segment or
// index set, on the backend selected by an execution policy.
//
// The same loop runs sequentially, fork-join on host workers or on a device, just by changing the
// policy:
//
//	sum := reduce.NewSum(policy, 0.0)
//	forall.Forall(policy, segments.NewRange(0, n), func(lane forall.Lane[device.Policy], i int) {
//		sum.Add(lane, x[i])
//	}, sum)
//	fmt.Println(sum.Get())
//
// Bodies receive a Lane, identifying the execution unit running the iteration. Reductions take the
// lane to find their private accumulator slot, and reductions used by a body must be passed to the
// dispatch call. Lanes and reductions are typed by the policy, so mixing policies doesn't compile.
//
// Sequential policies visit indices in the segment's natural order. Parallel policies only guarantee
// each index is visited exactly once.
package forall

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/gomlx/forall/pkg/core/segments"
	"k8s.io/klog/v2"
)

// Lane identifies the execution unit running an iteration of a loop with policy P.
type Lane[P backends.Policy] struct {
	backends.Lane
	_ [0]P
}

// Reducer is an accumulator that loop bodies with policy P can contribute to.
// See package reduce.
type Reducer[P backends.Policy] interface {
	backends.Participant

	// Policy the reducer was created for.
	Policy() P
}

// Forall invokes body once for each index of seg, using policy p.
//
// The reducers used by body must be given, so they are prepared for the launch (and finalized after it).
// For asynchronous policies, Forall may return before the body ran: reading a reduction waits for it.
//
// It panics on errors, see ForallOrError.
func Forall[P backends.Policy, I segments.Integer](p P, seg segments.Segment[I], body func(lane Lane[P], idx I), reducers ...Reducer[P]) {
	if err := ForallOrError(p, seg, body, reducers...); err != nil {
		panic(err)
	}
}

// ForallOrError is like Forall, but returns resource errors (e.g. failure to allocate reduction
// scratch memory on a device) instead of panicking. Contract violations still panic, including a
// segment resident in a memory space the policy can't access.
func ForallOrError[P backends.Policy, I segments.Integer](p P, seg segments.Segment[I], body func(lane Lane[P], idx I), reducers ...Reducer[P]) error {
	exec := executorOf(p)
	g := exec.Plan(seg.Len(), p.LaunchConfig())
	checkResidency(seg, g)
	if klog.V(1).Enabled() {
		klog.Infof("forall: %v with %v", seg, p)
	}
	return launch(exec, g, func(lane Lane[P], pos int) {
		body(lane, seg.At(pos))
	}, reducers)
}

// Dispatch is the low-level entry point of the engine: it launches body for the n logical positions
// [0, n) on the executor of p, with the given launch configuration, binding the reducers to the launch.
//
// It's used by loop constructs built on top of the engine, like the tiling package.
func Dispatch[P backends.Policy](p P, n int, cfg backends.LaunchConfig, body func(lane Lane[P], pos int), reducers ...Reducer[P]) error {
	exec := executorOf(p)
	return launch(exec, exec.Plan(n, cfg), body, reducers)
}

func launch[P backends.Policy](exec backends.Executor, g backends.Geometry, body func(lane Lane[P], pos int), reducers []Reducer[P]) error {
	checkReducers(exec, reducers)
	if klog.V(2).Enabled() {
		klog.Infof("forall: launching on %s: %s", exec.Name(), g)
	}
	return exec.Launch(g, func(lane backends.Lane, pos int) {
		body(Lane[P]{Lane: lane}, pos)
	}, participants(reducers)...)
}

// Each invokes body once for each index of seg, for loops without reductions.
func Each[P backends.Policy, I segments.Integer](p P, seg segments.Segment[I], body func(idx I)) {
	Forall(p, seg, func(_ Lane[P], idx I) { body(idx) })
}

// executorOf returns the policy executor, checking the policy is set.
func executorOf[P backends.Policy](p P) backends.Executor {
	if any(p) == nil {
		exceptions.Panicf("forall: nil policy")
	}
	exec := p.Executor()
	if exec == nil {
		exceptions.Panicf("forall: policy %v has no executor", p)
	}
	return exec
}

// checkReducers verifies all reducers were created for policies running on exec, and that none is
// given twice.
func checkReducers[P backends.Policy](exec backends.Executor, reducers []Reducer[P]) {
	seen := make(map[Reducer[P]]int, len(reducers))
	for i, r := range reducers {
		if r == nil {
			exceptions.Panicf("forall: reducer #%d is nil", i)
		}
		if rExec := r.Policy().Executor(); rExec != exec {
			exceptions.Panicf("forall: reducer #%d was created for executor %s, but the loop runs on %s",
				i, rExec.Name(), exec.Name())
		}
		if !reflect.TypeOf(r).Comparable() {
			continue
		}
		if j, found := seen[r]; found {
			exceptions.Panicf("forall: reducer #%d is the same as reducer #%d, each reducer can only be given once", i, j)
		}
		seen[r] = i
	}
}

// resident is implemented by segments that own index storage, like segments.List.
type resident interface {
	Resource() resources.Resource
}

// CheckResidency panics if any of segs holds index storage (e.g. a segments.List) in memory that loops
// with policy p can't read. Loop constructs calling Dispatch directly use it for their segments.
func CheckResidency[P backends.Policy, I segments.Integer](p P, segs ...segments.Segment[I]) {
	g := executorOf(p).Plan(0, backends.LaunchConfig{})
	for _, seg := range segs {
		checkResidency(seg, g)
	}
}

// checkResidency verifies a segment holding index storage lives where the launch g can read it:
// in the same memory space and, for device memory, on the same device.
func checkResidency[I segments.Integer](seg segments.Segment[I], g backends.Geometry) {
	r, ok := seg.(resident)
	if !ok || g.Memory == nil {
		return
	}
	res := r.Resource()
	if res.Space() != g.Memory.Space() {
		exceptions.Panicf("forall: %v is resident in %s memory, but %s launches run in %s memory",
			seg, res.Space(), g.Executor.Name(), g.Memory.Space())
	}
	if res.Space() == resources.DeviceSpace && res != g.Memory {
		exceptions.Panicf("forall: %v is resident in %v, but the launch runs on %v", seg, res, g.Memory)
	}
}

func participants[P backends.Policy](reducers []Reducer[P]) []backends.Participant {
	parts := make([]backends.Participant, len(reducers))
	for i, r := range reducers {
		parts[i] = r
	}
	return parts
}
