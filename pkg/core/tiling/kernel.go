package tiling

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/forall"
	"github.com/gomlx/forall/pkg/core/segments"
	"github.com/pkg/errors"
)

// Mapping of a loop (or of the tiles of a Tile statement) onto execution units.
type Mapping int

const (
	// MapSeq runs the loop sequentially within the execution unit.
	MapSeq Mapping = iota

	// MapGroups maps each position of the loop to a different group of units: device blocks, or
	// host lanes.
	MapGroups

	// MapUnits maps each position of the loop to a different unit within the group: device threads.
	// On host executors it is a sequential loop, like MapSeq.
	MapUnits
)

//go:generate go tool enumer -type=Mapping -trimprefix=Map -output=gen_mapping_enumer.go kernel.go

// Statement of a Kernel, created with For, Tile or Lambda.
type Statement[P backends.Policy, I segments.Integer] interface {
	// dims computes the launch dimensions of the statement into d, given the current snapshot of the segments.
	dims(d *LaunchDims, segs []segments.Segment[I], groupAxis, unitAxis int)

	// run executes the statement for one lane.
	run(st *laneState[P, I], groupAxis, unitAxis int)

	fmt.Stringer
}

// For loops over the positions of the segment of dimension dim, executing the inner statements
// for each one.
func For[P backends.Policy, I segments.Integer](dim int, mapping Mapping, stmts ...Statement[P, I]) Statement[P, I] {
	return &forStmt[P, I]{dim: dim, mapping: mapping, body: stmts}
}

// Tile splits the segment of dimension dim in tiles of chunk positions. For each tile, the inner
// statements are executed with the tile in place of the segment of dimension dim.
//
// It panics with an error wrapping ErrInvalidChunk if chunk <= 0.
func Tile[P backends.Policy, I segments.Integer](dim, chunk int, mapping Mapping, stmts ...Statement[P, I]) Statement[P, I] {
	if chunk <= 0 {
		panic(errors.Wrapf(ErrInvalidChunk, "Tile(%d, %d, ...)", dim, chunk))
	}
	return &tileStmt[P, I]{dim: dim, chunk: chunk, mapping: mapping, body: stmts}
}

// Lambda executes fn with the current index of every dimension, idx[dim].
//
// The idx slice is owned by the lane and reused: fn must not keep it.
func Lambda[P backends.Policy, I segments.Integer](fn func(lane forall.Lane[P], idx []I)) Statement[P, I] {
	return &lambdaStmt[P, I]{fn: fn}
}

// Kernel is a tree of nested loops that runs as a single launch.
type Kernel[P backends.Policy, I segments.Integer] struct {
	stmts   []Statement[P, I]
	numDims int
}

// NewKernel creates a kernel with the given top-level statements.
func NewKernel[P backends.Policy, I segments.Integer](stmts ...Statement[P, I]) *Kernel[P, I] {
	k := &Kernel[P, I]{stmts: stmts}
	for _, stmt := range stmts {
		k.numDims = max(k.numDims, maxDim(stmt)+1)
	}
	return k
}

// NumDims returns the minimum number of segments the kernel runs over: one more than the largest
// dimension used by its statements.
func (k *Kernel[P, I]) NumDims() int { return k.numDims }

// String implements fmt.Stringer.
func (k *Kernel[P, I]) String() string {
	return fmt.Sprintf("Kernel(%s)", joinStmts(k.stmts))
}

func maxDim[P backends.Policy, I segments.Integer](stmt Statement[P, I]) int {
	var dim int
	var body []Statement[P, I]
	switch s := stmt.(type) {
	case *forStmt[P, I]:
		dim, body = s.dim, s.body
	case *tileStmt[P, I]:
		dim, body = s.dim, s.body
	default:
		return -1
	}
	if dim < 0 {
		exceptions.Panicf("tiling: statement %s with negative dimension", stmt)
	}
	for _, child := range body {
		dim = max(dim, maxDim(child))
	}
	return dim
}

func joinStmts[P backends.Policy, I segments.Integer](stmts []Statement[P, I]) string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = stmt.String()
	}
	return strings.Join(parts, ", ")
}

type forStmt[P backends.Policy, I segments.Integer] struct {
	dim     int
	mapping Mapping
	body    []Statement[P, I]
}

func (s *forStmt[P, I]) String() string {
	return fmt.Sprintf("For(%d, %s, %s)", s.dim, s.mapping, joinStmts(s.body))
}

type tileStmt[P backends.Policy, I segments.Integer] struct {
	dim, chunk int
	mapping    Mapping
	body       []Statement[P, I]
}

func (s *tileStmt[P, I]) String() string {
	return fmt.Sprintf("Tile(%d, %d, %s, %s)", s.dim, s.chunk, s.mapping, joinStmts(s.body))
}

type lambdaStmt[P backends.Policy, I segments.Integer] struct {
	fn func(lane forall.Lane[P], idx []I)
}

func (s *lambdaStmt[P, I]) String() string { return "Lambda" }
