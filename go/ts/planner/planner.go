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

// Package planner holds the host planner's state as seen by this
// extension: the parsed query, range table, per-relation planning info
// and the append-relation list the expansion extends. The extension
// mutates this state but never reimplements planning.
package planner

import (
	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/plantree"
)

// Version is the host planner version the extension is loaded into.
type Version int

// SupportsPartitionwiseAggregate reports whether the host planner can
// push aggregation below an append of partitions. Versions before 11
// cannot, so no partition scheme is synthesized for them.
func (v Version) SupportsPartitionwiseAggregate() bool {
	return v >= 11
}

// RangeTblEntry describes one entry of the query's range table.
type RangeTblEntry struct {
	RelID         catalog.RelOID
	RelKind       catalog.RelKind
	Inh           bool
	RequiredPerms uint32
	SecurityQuals []plantree.Expr
}

// SortGroupClause is one ORDER BY key.
type SortGroupClause struct {
	Expr       plantree.Expr
	Descending bool
}

// Query is the parse tree of the query being planned.
type Query struct {
	RangeTable     []*RangeTblEntry
	JoinTree       *plantree.FromExpr
	SortClause     []SortGroupClause
	GroupClause    []plantree.Expr
	ResultRelation plantree.RelIndex
	RowMarks       []*PlanRowMark
}

// RangeTblEntryAt returns the range-table entry for a 1-based relation
// index.
func (q *Query) RangeTblEntryAt(rel plantree.RelIndex) *RangeTblEntry {
	return q.RangeTable[rel-1]
}

// RowMarkType classifies a row-level locking request.
type RowMarkType int

const (
	RowMarkExclusive RowMarkType = iota
	RowMarkNoKeyExclusive
	RowMarkShare
	RowMarkKeyShare
	RowMarkReference
	RowMarkCopy
)

// RowMarkRequiresRowShareLock reports whether a mark type needs a row
// share lock on the marked relation.
func RowMarkRequiresRowShareLock(t RowMarkType) bool {
	return t <= RowMarkKeyShare
}

// PlanRowMark is a row-level locking request against one relation.
type PlanRowMark struct {
	Rel      plantree.RelIndex
	MarkType RowMarkType
}

// GetPlanRowMark returns the row mark for a relation, if any.
func GetPlanRowMark(marks []*PlanRowMark, rel plantree.RelIndex) *PlanRowMark {
	for _, m := range marks {
		if m.Rel == rel {
			return m
		}
	}
	return nil
}

// PartitionStrategyMultidim is the sentinel partitioning strategy tag
// attached to synthesized hypertable partition schemes. No real strategy
// uses it, so the host planner refuses to apply the scheme anywhere
// except partitionwise-aggregate consideration.
const PartitionStrategyMultidim byte = 'm'

// PartitionScheme is a partitioning descriptor as the host planner's
// partitionwise logic consumes it.
type PartitionScheme struct {
	Strategy byte
	PartAtts int
}

// RelPrivate is extension-private state attached to a relation.
type RelPrivate struct {
	// AppendsOrdered is set when the chunk set was resolved in sort
	// order, letting later planning elide the sort node.
	AppendsOrdered bool
}

// RelOptInfo is the host planner's per-relation planning state.
type RelOptInfo struct {
	RelIndex plantree.RelIndex

	// Partitioning fields consumed by partitionwise aggregation.
	NParts            int
	PartScheme        *PartitionScheme
	PartExprs         [][]plantree.Expr
	NullablePartExprs [][]plantree.Expr

	Private *RelPrivate
}

// EnsurePrivate returns the relation's extension-private state, creating
// it on first use.
func (rel *RelOptInfo) EnsurePrivate() *RelPrivate {
	if rel.Private == nil {
		rel.Private = &RelPrivate{}
	}
	return rel.Private
}

// AppendRelInfo maps a child relation back to its append parent,
// including the per-column Var translation list.
type AppendRelInfo struct {
	ParentRel      plantree.RelIndex
	ChildRel       plantree.RelIndex
	ParentRelOID   catalog.RelOID
	TranslatedVars []*plantree.Var
}

// PlannerInfo is the per-query planner state.
type PlannerInfo struct {
	Version Version
	Parse   *Query

	// SimpleRelArray and SimpleRTEArray are 1-based; slot 0 is unused.
	// Expansion appends one slot per materialized chunk.
	SimpleRelArray []*RelOptInfo
	SimpleRTEArray []*RangeTblEntry

	AppendRelList []*AppendRelInfo

	// LimitTuples is the estimated row limit, or -1 when the query has
	// no usable LIMIT.
	LimitTuples float64
}

// NewPlannerInfo initializes planner state for a parsed query, sizing
// the simple arrays from the range table.
func NewPlannerInfo(version Version, parse *Query) *PlannerInfo {
	root := &PlannerInfo{
		Version:        version,
		Parse:          parse,
		SimpleRelArray: make([]*RelOptInfo, len(parse.RangeTable)+1),
		SimpleRTEArray: make([]*RangeTblEntry, len(parse.RangeTable)+1),
		LimitTuples:    -1,
	}
	for i, rte := range parse.RangeTable {
		rel := plantree.RelIndex(i + 1)
		root.SimpleRTEArray[rel] = rte
		root.SimpleRelArray[rel] = &RelOptInfo{RelIndex: rel}
	}
	return root
}

// RangeTblEntryFor fetches the range-table entry for a relation index.
func (root *PlannerInfo) RangeTblEntryFor(rel plantree.RelIndex) *RangeTblEntry {
	return root.Parse.RangeTblEntryAt(rel)
}
