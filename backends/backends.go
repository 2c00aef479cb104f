// Package backends defines the execution strategies a parallel loop can be compiled against.
//
// An Executor is the capability to run a loop on one kind of hardware: sequentially on the calling
// goroutine, fork-join on a pool of host workers, or on an accelerator as a grid of groups (blocks)
// of execution units (threads). A Policy is the small value the caller picks when writing a loop:
// it names an Executor plus the few knobs the loop cares about (group size, async launch,
// reduction strategy).
//
// The dispatch engine (package forall) and the tiling layer (package tiling) are programmed only
// against these interfaces.
//
// Which backends exist is decided at build time: each backend registers itself during package
// initialization (see Register), and backends that are excluded by build tags are simply not
// available. Import the default set with:
//
//	import _ "github.com/gomlx/forall/backends/default"
//
// To simplify error handling, contract violations panic with a stack trace.
// See package github.com/gomlx/exceptions.
package backends

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// Executor is the API implemented by every backend.
type Executor interface {
	// Name returns the short name of the backend. E.g.: "host".
	Name() string

	// Description is a longer description of the Executor that can be used to pretty-print.
	Description() string

	// Kind of the executor.
	Kind() Kind

	// Capabilities of the executor.
	Capabilities() Capabilities

	// Plan returns the launch geometry to run n logical positions with the given configuration.
	// It is pure: it doesn't allocate nor start anything.
	Plan(n int, cfg LaunchConfig) Geometry

	// Launch runs body(lane, pos) exactly once for each pos in [0, g.N).
	//
	// The participants are notified around the launch: Begin before any body runs, GroupDone once
	// each group finished all its positions and End after everything ran. If any Begin fails,
	// nothing runs and the error is returned.
	//
	// If g.Async is set the executor may return before the body ran: use Synchronize to wait.
	Launch(g Geometry, body func(lane Lane, pos int), parts ...Participant) error

	// Synchronize waits for all pending (asynchronous) launches to finish.
	Synchronize()

	// Finalize releases all the associated resources immediately, and makes the executor invalid.
	Finalize()
}

// Policy selects the Executor and launch parameters of a loop.
//
// Policies are small value types. The dispatch engine is generic on the policy type, so reductions
// and lanes created for one policy type can't be used with another: that's checked by the compiler.
type Policy interface {
	// Executor that runs the loop.
	Executor() Executor

	// LaunchConfig for loops using this policy.
	LaunchConfig() LaunchConfig

	// ReduceStrategy used by reductions bound to this policy.
	ReduceStrategy() ReduceStrategy
}

// Constructor takes a config string (optionally empty) and returns a Policy for the backend.
type Constructor func(config string) Policy

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a default constructor that takes as input a configuration string that is
// passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// List returns the names of the registered backends, sorted.
func List() []string {
	return slices.Sorted(maps.Keys(registeredConstructors))
}

// IsRegistered returns whether a backend with the given name was compiled in and registered.
func IsRegistered(name string) bool {
	_, found := registeredConstructors[name]
	return found
}

// DefaultConfig is the name of the default backend configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// ConfigEnv is the environment variable with the default backend configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "host") and
// "<backend_configuration>" is backend specific (e.g.: for host backend, "workers=8").
const ConfigEnv = "FORALL_BACKEND"

// New returns the Policy of the default backend.
//
// The default is:
//
// 1. The environment FORALL_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
//
// It panics if no backend was registered.
func New() Policy {
	config, found := os.LookupEnv(ConfigEnv)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig takes a configurations string formated as
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "device") and
// "<backend_configuration>" is backend specific (e.g.: for the device backend, "group=128,async").
func NewWithConfig(config string) Policy {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered backends -- maybe import the default ones with import _ "github.com/gomlx/forall/backends/default"?`)
	}
	backendName := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	} else if config != "" {
		backendName = config
		backendConfig = ""
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		exceptions.Panicf("can't find backend %q for configuration %q given, registered backends: %v",
			backendName, config, List())
	}
	return constructor(backendConfig)
}
