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
	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/tserrors"
)

// hypertablePartExprs builds, per dimension, the list of expressions a
// GROUP BY may use to cover that dimension: the raw column, plus the
// bucketing call over it when the dimension has one. A query grouping by
// time_bucket(width, time) is as amenable to pushdown as one grouping by
// the raw time column.
func hypertablePartExprs(cat catalog.Catalog, ht *catalog.Hypertable, varno plantree.RelIndex) ([][]plantree.Expr, error) {
	partExprs := make([][]plantree.Expr, ht.Space.NumDimensions())

	for i, dim := range ht.Space.Dimensions {
		att, ok := attributeByNum(cat.Attributes(ht.RelID), dim.ColumnAttNo)
		if !ok {
			return nil, tserrors.Errorf(tserrors.CodeInternal,
				"cache lookup failed for attribute %d of relation %d", dim.ColumnAttNo, ht.RelID)
		}
		col := &plantree.Var{Rel: varno, AttNo: dim.ColumnAttNo, Type: att.Type}

		if dim.Partitioning != nil {
			partExprs[i] = []plantree.Expr{col, dim.Partitioning.Expr}
		} else {
			partExprs[i] = []plantree.Expr{col}
		}
	}
	return partExprs, nil
}

func attributeByNum(attrs []catalog.Attribute, num plantree.AttrNumber) (catalog.Attribute, bool) {
	for _, a := range attrs {
		if a.Num == num {
			return a, true
		}
	}
	return catalog.Attribute{}, false
}

// buildHypertablePartitionInfo fabricates a partition scheme that makes
// the host planner treat the hypertable as a partitioned table for
// planning purposes, so partitionwise aggregation is considered across
// its chunks.
//
// The scheme's strategy tag is a sentinel no real strategy uses, which
// makes the host planner raise errors anywhere the scheme would be used
// beyond partitionwise-aggregate consideration. Its attribute count is
// the hypertable's dimension count: a full (non-partial) pushdown then
// requires the GROUP BY to cover every dimension, matching the shallow
// one-level layout of a multi-dimensional hypertable.
func buildHypertablePartitionInfo(cat catalog.Catalog, ht *catalog.Hypertable, hyperRel *planner.RelOptInfo, nparts int) error {
	partExprs, err := hypertablePartExprs(cat, ht, hyperRel.RelIndex)
	if err != nil {
		return err
	}
	hyperRel.PartScheme = &planner.PartitionScheme{
		Strategy: planner.PartitionStrategyMultidim,
		PartAtts: ht.Space.NumDimensions(),
	}
	hyperRel.NParts = nparts
	hyperRel.PartExprs = partExprs
	hyperRel.NullablePartExprs = make([][]plantree.Expr, ht.Space.NumDimensions())
	return nil
}
