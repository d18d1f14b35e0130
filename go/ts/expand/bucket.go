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

package expand

import (
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// transformBucketComparison rewrites a comparison of the form
//
//	time_bucket(width, column) OP value
//
// into an equivalent comparison on the raw column so the restriction
// index can prune chunks with it.
//
// time_bucket always returns the lower bound of the bucket, so for lower
// bound comparisons the width is irrelevant:
//
//	time_bucket(10, column) > 109   becomes   column > 109
//
// For upper bound comparisons the bucket may contain values up to width
// past its lower edge, so the bound is extended by width:
//
//	time_bucket(10, column) < 100   becomes   column < 100 + 10
//
// Comparisons with the bucketing call on the right are commuted first.
//
// The second return value reports whether a rewrite happened. Any missing
// operator, cast or strategy registration returns the original expression
// unchanged: the unrewritten predicate is still correct, just useless for
// pruning.
func transformBucketComparison(op *plantree.OpExpr) (*plantree.OpExpr, bool) {
	left, right := op.Args[0], op.Args[1]

	bucket, ok := left.(*plantree.FuncExpr)
	commuted := false
	if !ok {
		bucket = right.(*plantree.FuncExpr)
		commuted = true
	}
	var value *plantree.Const
	if c, ok := right.(*plantree.Const); ok {
		value = c
	} else {
		value = left.(*plantree.Const)
	}

	// caller guarantees the two-argument (width, column) form
	width, ok := bucket.Args[0].(*plantree.Const)
	if !ok {
		return op, false
	}
	column := bucket.Args[1]

	opno := op.Op
	if commuted {
		opno, ok = types.Commutator(op.Op)
		if !ok {
			return op, false
		}
	}

	columnType := bucket.RetType
	strategy := types.OrderingStrategy(opno, columnType)

	switch strategy {
	case types.StrategyGreater, types.StrategyGreaterEqual:
		// column > value
		return &plantree.OpExpr{
			Op:   opno,
			Args: []plantree.Expr{plantree.CloneExpr(column), plantree.CloneExpr(value)},
		}, true

	case types.StrategyLess, types.StrategyLessEqual:
		// column < value + width
		addOp, ok := types.AdditionOperator(value.Type, width.Type)
		if !ok {
			return op, false
		}

		if columnType == types.TypeTimestampTz && width.Type == types.TypeInterval {
			if iv, ok := width.Val.(types.Interval); ok && iv.Months == 0 && iv.Days != 0 {
				// A day component's length in microseconds depends on the
				// session time zone, which is unknown at plan time. Bucket
				// arithmetic is always relative to a fixed origin, so the
				// day component can be folded into the time component at a
				// fixed 24 hours.
				width = &plantree.Const{Type: width.Type, Val: iv.NormalizeDays()}
			}
		}

		var subst plantree.Expr = &plantree.OpExpr{
			Op:   addOp.ID,
			Args: []plantree.Expr{plantree.CloneExpr(value), plantree.CloneExpr(width)},
		}

		// date + interval yields timestamp; insert a cast when the
		// addition widens past the column type
		if addOp.Result != columnType {
			castFn, ok := types.CastFunc(addOp.Result, columnType)
			if !ok {
				return op, false
			}
			subst = &plantree.FuncExpr{
				Func:    castFn,
				RetType: columnType,
				Args:    []plantree.Expr{subst},
			}
		}

		if columnType == types.TypeTimestampTz && width.Type == types.TypeInterval {
			// timestamptz + interval is stable, not immutable; it is only
			// safe to evaluate at plan time when the interval carries no
			// calendar components
			if iv, ok := width.Val.(types.Interval); ok && iv.IsTimeOnly() {
				if folded, ok := types.Eval(addOp.ID, value.Val, width.Val); ok {
					subst = &plantree.Const{Type: addOp.Result, Val: folded}
				}
			}
		}

		return &plantree.OpExpr{
			Op:   opno,
			Args: []plantree.Expr{plantree.CloneExpr(column), subst},
		}, true
	}

	return op, false
}
