// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package host implements the fork-join host-parallel backend.
//
// A launch statically partitions its positions over the workers, each worker runs its contiguous
// partition in order, and Launch returns only after all workers joined. Each partition is a lane
// with its own slot, so reductions need no locking during the parallel phase.
//
// Loop bodies may themselves dispatch loops on this backend: the worker pool runs work inline
// when it has no goroutine available, so nested loops can't deadlock.
package host

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/internal/workerspool"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BackendName to be used in FORALL_BACKEND to specify this backend.
const BackendName = "host"

func init() {
	backends.Register(BackendName, New)
}

// New constructs a host Policy from a configuration string.
//
// Options:
//
//   - "workers=N": number of partitions per loop. Defaults to runtime.NumCPU().
//   - "parallelism=N": soft limit of goroutines of the executor's pool, see workerspool.Pool.
//     0 disables parallelism (loops run inline), -1 is unlimited. Defaults to runtime.NumCPU().
//   - "atomic": reductions combine directly into one shared value, instead of one per worker.
//
// Example: "host:workers=16".
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
	workers, err := opts.Int("workers", 0)
	if err != nil {
		return Policy{}, err
	}
	parallelism, err := opts.Int("parallelism", runtime.NumCPU())
	if err != nil {
		return Policy{}, err
	}
	atomic, err := opts.Bool("atomic")
	if err != nil {
		return Policy{}, err
	}
	if err = opts.CheckAllUsed(); err != nil {
		return Policy{}, err
	}
	if workers < 0 {
		return Policy{}, errors.Errorf("backend %q: workers=%d must be >= 0", BackendName, workers)
	}
	p := Policy{Workers: workers, Atomic: atomic}
	if parallelism != runtime.NumCPU() {
		p.Host = NewExecutor(parallelism)
	}
	return p, nil
}

// Policy runs loops fork-join on host workers.
type Policy struct {
	// Host executor to use. If nil the shared default executor is used.
	Host *Executor

	// Workers is the number of partitions of each loop. If 0, runtime.NumCPU() is used.
	Workers int

	// Atomic selects the atomic reduction strategy, instead of one partial value per worker.
	Atomic bool
}

var _ backends.Policy = Policy{}

// Executor implements backends.Policy.
func (p Policy) Executor() backends.Executor {
	if p.Host != nil {
		return p.Host
	}
	return Default()
}

// LaunchConfig implements backends.Policy. The host GroupSize is the number of workers.
func (p Policy) LaunchConfig() backends.LaunchConfig {
	return backends.LaunchConfig{GroupSize: p.Workers}
}

// ReduceStrategy implements backends.Policy.
func (p Policy) ReduceStrategy() backends.ReduceStrategy {
	if p.Atomic {
		return backends.ReduceAtomic
	}
	return backends.ReduceSlots
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	var parts []string
	if p.Workers > 0 {
		parts = append(parts, fmt.Sprintf("workers=%d", p.Workers))
	}
	if p.Atomic {
		parts = append(parts, "atomic")
	}
	if len(parts) == 0 {
		return "host"
	}
	return fmt.Sprintf("host(%s)", strings.Join(parts, ","))
}

var (
	defaultExecutor     *Executor
	defaultExecutorOnce sync.Once
)

// Default returns the shared host executor, created on first use.
func Default() *Executor {
	defaultExecutorOnce.Do(func() {
		defaultExecutor = NewExecutor(runtime.NumCPU())
	})
	return defaultExecutor
}

// Executor implements backends.Executor on a pool of goroutines.
type Executor struct {
	pool *workerspool.Pool
}

var _ backends.Executor = (*Executor)(nil)

// NewExecutor creates a host executor whose pool has the given parallelism (see workerspool.Pool.SetMaxParallelism).
func NewExecutor(parallelism int) *Executor {
	pool := workerspool.New()
	pool.SetMaxParallelism(parallelism)
	return &Executor{pool: pool}
}

// Capabilities of the host executor.
var Capabilities = backends.Capabilities{
	MaxGroupSize: 1 << 16,
	NestedLaunch: true,
	ReduceStrategies: map[backends.ReduceStrategy]bool{
		backends.ReduceSlots:  true,
		backends.ReduceAtomic: true,
	},
}

// Name implements backends.Executor.
func (e *Executor) Name() string { return BackendName }

// Description implements backends.Executor.
func (e *Executor) Description() string {
	return fmt.Sprintf("Fork-join host parallel execution (parallelism=%d)", e.pool.MaxParallelism())
}

// Kind implements backends.Executor.
func (e *Executor) Kind() backends.Kind { return backends.HostParallel }

// Capabilities implements backends.Executor.
func (e *Executor) Capabilities() backends.Capabilities { return Capabilities }

// Plan implements backends.Executor.
//
// The positions are split in min(workers, n) partitions, each one a group of one unit with its own slot.
func (e *Executor) Plan(n int, cfg backends.LaunchConfig) backends.Geometry {
	workers := cfg.GroupSize
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(min(workers, n, Capabilities.MaxGroupSize), 1)
	return backends.Geometry{
		N:         n,
		Groups:    workers,
		GroupSize: 1,
		Slots:     workers,
		Memory:    resources.Host,
		Executor:  e,
	}
}

// Launch implements backends.Executor. It always returns after all positions ran.
func (e *Executor) Launch(g backends.Geometry, body func(lane backends.Lane, pos int), parts ...backends.Participant) error {
	if err := backends.BeginAll(g, parts); err != nil {
		return err
	}
	if klog.V(3).Enabled() {
		klog.Infof("host: launching %s", g)
	}
	e.pool.ForkJoin(g.Groups, func(worker int) {
		lane := backends.Lane{Group: worker, Slot: worker}
		end := backends.FirstIndex(g.N, g.Groups, worker+1)
		for pos := backends.FirstIndex(g.N, g.Groups, worker); pos < end; pos++ {
			body(lane, pos)
		}
		backends.GroupDoneAll(worker, parts)
	})
	backends.EndAll(parts)
	return nil
}

// Synchronize implements backends.Executor. Host launches are synchronous.
func (e *Executor) Synchronize() {}

// Finalize implements backends.Executor.
func (e *Executor) Finalize() {}
