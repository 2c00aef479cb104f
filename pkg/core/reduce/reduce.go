// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package reduce implements reduction variables: accumulators that loop bodies contribute to
// concurrently, whose final value doesn't depend on how the loop was partitioned.
//
// A reduction is created for a policy, passed to the dispatch call of the loops that contribute to it,
// and read after them:
//
//	minVal := reduce.NewMinLoc(policy, math.MaxFloat64, -1)
//	forall.Forall(policy, seg, func(lane forall.Lane[host.Policy], i int) {
//		minVal.CombineLoc(lane, x[i], i)
//	}, minVal)
//	v, loc := minVal.GetLoc()
//
// How partial values are accumulated is selected by the policy (see backends.ReduceStrategy):
// one slot per lane (sequential and host policies), compare-and-swap on a single value, or a tree
// combine with one partial value per group in device scratch memory.
package reduce

import (
	"golang.org/x/exp/constraints"
)

// Number is the constraint of values that can be reduced.
type Number interface {
	constraints.Integer | constraints.Float
}

// Kind of reduction.
type Kind int

const (
	KindSum Kind = iota
	KindMin
	KindMax
	KindMinLoc
	KindMaxLoc
)

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go reduce.go

// entry is a reduction value, with its location for the *Loc kinds.
type entry[T Number] struct {
	value T
	loc   int
}

// combineFn merges two entries. It must be associative and commutative, and for the *Loc kinds
// define a total order on (value, loc), so the result doesn't depend on the combine order.
type combineFn[T Number] func(a, b entry[T]) entry[T]

func combineFor[T Number](kind Kind) combineFn[T] {
	switch kind {
	case KindSum:
		return func(a, b entry[T]) entry[T] { return entry[T]{value: a.value + b.value} }
	case KindMin:
		return func(a, b entry[T]) entry[T] {
			if b.value < a.value {
				return b
			}
			return a
		}
	case KindMax:
		return func(a, b entry[T]) entry[T] {
			if b.value > a.value {
				return b
			}
			return a
		}
	case KindMinLoc:
		return func(a, b entry[T]) entry[T] {
			if b.value < a.value || (b.value == a.value && b.loc < a.loc) {
				return b
			}
			return a
		}
	case KindMaxLoc:
		return func(a, b entry[T]) entry[T] {
			if b.value > a.value || (b.value == a.value && b.loc < a.loc) {
				return b
			}
			return a
		}
	}
	panic(kind)
}
