/*
Copyright 2025 The Timescale Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package restrict

import (
	"slices"

	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// bound is one side of a dimension's value range.
type bound struct {
	value     int64
	inclusive bool
}

// dimensionBounds accumulates the tightest bounds seen for one
// dimension. A nil side is unbounded.
type dimensionBounds struct {
	lower *bound
	upper *bound
}

// HypertableRestrictInfo indexes restriction clauses by partitioning
// dimension for one hypertable.
type HypertableRestrictInfo struct {
	rel    plantree.RelIndex
	ht     *catalog.Hypertable
	byDim  map[int32]*dimensionBounds
	usable int
}

// NewHypertableRestrictInfo creates an empty index for the given target
// relation and hypertable.
func NewHypertableRestrictInfo(rel plantree.RelIndex, ht *catalog.Hypertable) *HypertableRestrictInfo {
	return &HypertableRestrictInfo{
		rel:   rel,
		ht:    ht,
		byDim: make(map[int32]*dimensionBounds),
	}
}

// Add indexes every restriction it can interpret as a bound on a
// partitioning dimension. Clauses it cannot interpret are dropped; that
// only makes pruning less selective, never wrong.
func (hri *HypertableRestrictInfo) Add(restrictions []*Restriction) {
	for _, r := range restrictions {
		hri.addClause(r.Clause)
	}
}

func (hri *HypertableRestrictInfo) addClause(clause plantree.Expr) {
	op, ok := clause.(*plantree.OpExpr)
	if !ok || len(op.Args) != 2 {
		return
	}

	v, vok := op.Args[0].(*plantree.Var)
	other := op.Args[1]
	opno := op.Op
	if !vok {
		// column on the right: commute so the bound reads col OP value
		v, vok = op.Args[1].(*plantree.Var)
		other = op.Args[0]
		if !vok {
			return
		}
		commuted, ok := types.Commutator(opno)
		if !ok {
			return
		}
		opno = commuted
	}
	if v.Rel != hri.rel {
		return
	}

	dim := hri.dimensionForColumn(v.AttNo)
	if dim == nil {
		return
	}

	value, ok := reduceToValue(other)
	if !ok {
		return
	}

	strategy := types.OrderingStrategy(opno, v.Type)
	bounds := hri.boundsFor(dim.ID)
	switch strategy {
	case types.StrategyGreater, types.StrategyGreaterEqual:
		bounds.tightenLower(value, strategy == types.StrategyGreaterEqual)
	case types.StrategyLess, types.StrategyLessEqual:
		bounds.tightenUpper(value, strategy == types.StrategyLessEqual)
	case types.StrategyEqual:
		bounds.tightenLower(value, true)
		bounds.tightenUpper(value, true)
	default:
		return
	}
	hri.usable++
}

func (hri *HypertableRestrictInfo) dimensionForColumn(attNo plantree.AttrNumber) *catalog.Dimension {
	for i := range hri.ht.Space.Dimensions {
		if hri.ht.Space.Dimensions[i].ColumnAttNo == attNo {
			return &hri.ht.Space.Dimensions[i]
		}
	}
	return nil
}

func (hri *HypertableRestrictInfo) boundsFor(dimID int32) *dimensionBounds {
	b := hri.byDim[dimID]
	if b == nil {
		b = &dimensionBounds{}
		hri.byDim[dimID] = b
	}
	return b
}

func (b *dimensionBounds) tightenLower(value int64, inclusive bool) {
	if b.lower == nil || value > b.lower.value || (value == b.lower.value && !inclusive) {
		b.lower = &bound{value: value, inclusive: inclusive}
	}
}

func (b *dimensionBounds) tightenUpper(value int64, inclusive bool) {
	if b.upper == nil || value < b.upper.value || (value == b.upper.value && !inclusive) {
		b.upper = &bound{value: value, inclusive: inclusive}
	}
}

// reduceToValue evaluates an expression to a plan-time constant scalar.
// Handles plain constants, constant arithmetic the rewriter deferred, and
// built-in casts over those.
func reduceToValue(e plantree.Expr) (int64, bool) {
	switch n := e.(type) {
	case *plantree.Const:
		if n.Null {
			return 0, false
		}
		v, ok := n.Val.(int64)
		return v, ok
	case *plantree.OpExpr:
		if len(n.Args) != 2 {
			return 0, false
		}
		l, lok := constDatum(n.Args[0])
		r, rok := constDatum(n.Args[1])
		if !lok || !rok {
			return 0, false
		}
		out, ok := types.Eval(n.Op, l, r)
		if !ok {
			return 0, false
		}
		v, ok := out.(int64)
		return v, ok
	case *plantree.FuncExpr:
		if len(n.Args) != 1 {
			return 0, false
		}
		inner, ok := reduceToValue(n.Args[0])
		if !ok {
			return 0, false
		}
		out, ok := types.EvalCast(n.Func, inner)
		if !ok {
			return 0, false
		}
		v, ok := out.(int64)
		return v, ok
	default:
		return 0, false
	}
}

func constDatum(e plantree.Expr) (types.Datum, bool) {
	c, ok := e.(*plantree.Const)
	if !ok || c.Null {
		return nil, false
	}
	return c.Val, true
}

// HasRestrictions reports whether any clause produced a usable bound.
func (hri *HypertableRestrictInfo) HasRestrictions() bool {
	return hri.usable > 0
}

// chunkMatches tests a chunk's slices against the accumulated bounds.
// A chunk without a slice along a bounded dimension is kept.
func (hri *HypertableRestrictInfo) chunkMatches(ch *catalog.Chunk) bool {
	for dimID, bounds := range hri.byDim {
		slice, ok := ch.SliceFor(dimID)
		if !ok {
			continue
		}
		// slices are half-open [Start, End)
		if lb := bounds.lower; lb != nil && slice.End <= lb.value {
			return false
		}
		if ub := bounds.upper; ub != nil {
			if ub.inclusive {
				if slice.Start > ub.value {
					return false
				}
			} else if slice.Start >= ub.value {
				return false
			}
		}
	}
	return true
}

// ChunkRelIDs resolves the pruned chunk set. The parent relation is never
// part of the result: the hypertable root holds no rows by construction.
func (hri *HypertableRestrictInfo) ChunkRelIDs(cat catalog.Catalog, lock catalog.LockMode) []catalog.RelOID {
	var out []catalog.RelOID
	for _, ch := range cat.Chunks(hri.ht.ID, lock) {
		if hri.chunkMatches(ch) {
			out = append(out, ch.RelID)
		}
	}
	return out
}

// ChunkRelIDsOrdered resolves the pruned chunk set ordered along the
// hypertable's open dimension, reversed when reverse is set. ok is false
// when the index cannot produce a total order, in which case the caller
// must fall back to unordered resolution.
func (hri *HypertableRestrictInfo) ChunkRelIDsOrdered(cat catalog.Catalog, lock catalog.LockMode, reverse bool) ([]catalog.RelOID, bool) {
	if hri.ht.Space.NumDimensions() != 1 {
		return nil, false
	}
	dimID := hri.ht.Space.Dimensions[0].ID

	var matched []*catalog.Chunk
	for _, ch := range cat.Chunks(hri.ht.ID, lock) {
		if _, ok := ch.SliceFor(dimID); !ok {
			return nil, false
		}
		if hri.chunkMatches(ch) {
			matched = append(matched, ch)
		}
	}

	slices.SortFunc(matched, func(a, b *catalog.Chunk) int {
		sa, _ := a.SliceFor(dimID)
		sb, _ := b.SliceFor(dimID)
		switch {
		case sa.Start < sb.Start:
			return -1
		case sa.Start > sb.Start:
			return 1
		default:
			return 0
		}
	})
	if reverse {
		slices.Reverse(matched)
	}

	out := make([]catalog.RelOID, len(matched))
	for i, ch := range matched {
		out[i] = ch.RelID
	}
	return out, true
}
