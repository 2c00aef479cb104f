// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tiling splits iteration spaces into fixed-size tiles and maps nested loops onto the
// two-level hierarchy of execution units (groups of units) of a backend.
//
// A Kernel is a tree of statements over one segment per dimension:
//
//	k := tiling.NewKernel(
//		tiling.Tile[device.Policy, int](0, 16, tiling.MapGroups,
//			tiling.For[device.Policy, int](0, tiling.MapUnits,
//				tiling.For[device.Policy, int](1, tiling.MapSeq,
//					tiling.Lambda(func(lane forall.Lane[device.Policy], idx []int) {
//						out[idx[0]*cols+idx[1]] = 2 * in[idx[0]*cols+idx[1]]
//					})))))
//	tiling.Run(policy, k, []segments.Segment[int]{rows, cols})
//
// Before anything runs, the launch dimensions (number of groups and units per group) are computed
// from the segments, and each (group, unit) pair is mapped to exactly one combination of the mapped
// loops' positions.
package tiling

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/pkg/core/segments"
	"github.com/pkg/errors"
)

// ErrInvalidChunk is the cause of the panic of tiling with a non-positive chunk size or over a negative length.
var ErrInvalidChunk = errors.New("invalid tile chunk")

// NumTiles returns the number of tiles of size chunk needed to cover length positions, that is ⌈length/chunk⌉.
func NumTiles(length, chunk int) int {
	if chunk <= 0 || length < 0 {
		panic(errors.Wrapf(ErrInvalidChunk, "tiling %d positions with chunk %d", length, chunk))
	}
	return (length + chunk - 1) / chunk
}

// Tiles splits seg into consecutive sub-segments of chunk positions, the last one possibly shorter.
// Concatenated in order they visit exactly the positions of seg. If chunk >= seg.Len() there is only one tile.
//
// It panics with an error wrapping ErrInvalidChunk if chunk <= 0.
func Tiles[I segments.Integer](seg segments.Segment[I], chunk int) []segments.Segment[I] {
	if seg == nil {
		exceptions.Panicf("tiling: nil segment")
	}
	n := seg.Len()
	tiles := make([]segments.Segment[I], NumTiles(n, chunk))
	for t := range tiles {
		tiles[t] = seg.Slice(t*chunk, chunk)
	}
	return tiles
}
