// forall_bench runs the growing trip count regression on every registered backend: a Sum, a MinLoc and
// a tiled kernel for loop sizes stepping from one block up to --max_size, checking each result.
//
// Example:
//
//	forall_bench --backends="host:workers=4;device:group=128,atomic" --max_size=1M
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/forall/backends"
	_ "github.com/gomlx/forall/backends/default"
	"github.com/gomlx/forall/pkg/core/forall"
	"github.com/gomlx/forall/pkg/core/reduce"
	"github.com/gomlx/forall/pkg/core/segments"
	"github.com/gomlx/forall/pkg/core/tiling"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

var (
	flagBackends = flag.String("backends", "",
		"Semicolon separated list of backend configurations to benchmark (e.g. \"seq;host:workers=4\"). "+
			"Defaults to all registered backends with their default configuration.")
	flagStep    = flag.Int("step", 256, "Loop sizes grow by this step, starting from it.")
	flagMaxSize = flag.String("max_size", "64KiB", "Largest loop size, it accepts humanized values like \"1M\".")
	flagTile    = flag.Int("tile", 64, "Chunk size of the tiled kernel.")
	flagQuiet   = flag.Bool("quiet", false, "Don't display the progress bar.")
)

// result of the benchmark of one backend.
type result struct {
	config      string
	description string
	loops       int
	indices     int64
	elapsed     time.Duration
	err         error
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	maxSize := int(must.M1(humanize.ParseBytes(*flagMaxSize)))
	if *flagStep <= 0 || maxSize < *flagStep {
		klog.Errorf("Invalid --step=%d and --max_size=%s", *flagStep, *flagMaxSize)
		os.Exit(1)
	}
	configs := backends.List()
	if *flagBackends != "" {
		configs = strings.Split(*flagBackends, ";")
	}
	numSizes := maxSize / *flagStep

	var bar *progressbar.ProgressBar
	if !*flagQuiet {
		bar = progressbar.NewOptions(len(configs)*numSizes,
			progressbar.OptionSetDescription("forall_bench"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]result, 0, len(configs))
	for _, config := range configs {
		p := backends.NewWithConfig(config)
		r := result{config: config, description: p.Executor().Description()}
		start := time.Now()
		for size := *flagStep; size <= maxSize; size += *flagStep {
			if err := checkSize(p, size, *flagTile); err != nil {
				r.err = errors.WithMessagef(err, "backend %q, size=%d", config, size)
				break
			}
			r.loops += 3
			r.indices += 3 * int64(size)
			if bar != nil {
				must.M(bar.Add(1))
			}
		}
		r.elapsed = time.Since(start)
		results = append(results, r)
	}
	if bar != nil {
		must.M(bar.Finish())
	}
	fmt.Println(reportTable(results).Render())
	for _, r := range results {
		if r.err != nil {
			klog.Errorf("%+v", r.err)
			os.Exit(1)
		}
	}
}

// checkSize runs the three loops of one size and checks their results.
func checkSize(p backends.Policy, size, tile int) error {
	type P = backends.Policy
	seg := segments.NewRange(0, size)

	// Sum of a constant: initial value + size * value.
	const initial, value = 5.0, 0.5
	sum := reduce.NewSum(p, initial)
	if err := forall.ForallOrError(p, seg, func(lane forall.Lane[P], _ int) {
		sum.Add(lane, value)
	}, sum); err != nil {
		return err
	}
	if got, want := sum.Get(), initial+float64(size)*value; got != want {
		return errors.Errorf("sum: got %g, wanted %g", got, want)
	}

	// MinLoc over a "V" shaped function with its minimum in the middle.
	middle := size / 2
	minLoc := reduce.NewMinLoc(p, math.MaxInt, -1)
	if err := forall.ForallOrError(p, seg, func(lane forall.Lane[P], i int) {
		minLoc.CombineLoc(lane, abs(i-middle), i)
	}, minLoc); err != nil {
		return err
	}
	if v, loc := minLoc.GetLoc(); v != 0 || loc != middle {
		return errors.Errorf("minloc: got (%d, %d), wanted (0, %d)", v, loc, middle)
	}

	// Tiled kernel: tiles to groups, positions within the tile to units.
	count := reduce.NewSum(p, int64(0))
	k := tiling.NewKernel(
		tiling.Tile[P, int](0, tile, tiling.MapGroups,
			tiling.For[P, int](0, tiling.MapUnits,
				tiling.Lambda(func(lane forall.Lane[P], idx []int) {
					count.Add(lane, int64(idx[0]))
				}))))
	if err := tiling.RunOrError(p, k, []segments.Segment[int]{seg}, count); err != nil {
		return err
	}
	if got, want := count.Get(), int64(size)*int64(size-1)/2; got != want {
		return errors.Errorf("tiled kernel: got %d, wanted %d", got, want)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
