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

// Package expand turns a hypertable reference in a query into an append
// relationship over the subset of its chunks the query can actually
// touch. It derives restriction clauses from the query's quals, rewrites
// bucketing-function comparisons so they prune, resolves the chunk set
// (explicit list, pruned, or sort-ordered), and materializes one child
// range-table entry per chunk.
//
// Pruning is an over-approximation by design: every fallback keeps more
// chunks, never fewer, so a failed rewrite or an uninterpretable clause
// can cost performance but never rows.
package expand

import (
	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/log"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/tserrors"
)

// ValidExpansionTarget reports whether a relation may be expanded by this
// subsystem at all. Rejections here return the query to the host
// planner's generic path.
func ValidExpansionTarget(ht *catalog.Hypertable, parse *planner.Query, rte *planner.RangeTblEntry) bool {
	if ht == nil ||
		// inheritance enabled
		!rte.Inh ||
		// row locks not replicable per chunk
		len(parse.RowMarks) != 0 ||
		// not an update/delete target
		parse.ResultRelation != 0 {
		return false
	}
	return true
}

// ExpandHypertableChunks expands a hypertable relation into an append
// relationship over its chunks. The parent's range-table entry is marked
// as an inheritance parent and one child entry per resolved chunk is
// appended to the range table and the append-relation list.
func ExpandHypertableChunks(cat catalog.Catalog, root *planner.PlannerInfo, ht *catalog.Hypertable, rel *planner.RelOptInfo) error {
	parse := root.Parse
	rti := rel.RelIndex
	rte := root.RangeTblEntryFor(rti)

	// double check our permissions are valid
	if rti == parse.ResultRelation {
		return tserrors.New(tserrors.CodeInternal, "cannot expand the query's result relation")
	}
	if rc := planner.GetPlanRowMark(parse.RowMarks, rti); rc != nil && planner.RowMarkRequiresRowShareLock(rc.MarkType) {
		return tserrors.New(tserrors.CodeFailedPrecondition, "unexpected permissions requested")
	}

	// mark the parent as an append relation
	rte.Inh = true

	markerID, err := initChunkExclusionFunc(cat)
	if err != nil {
		return err
	}

	ctx := collectQualCtx{
		cat:  cat,
		root: root,
		rel:  rel,
	}

	// walk the tree and find restrictions or chunk exclusion functions
	if err := ctx.collectQuals(parse.JoinTree, markerID); err != nil {
		return err
	}

	chunkRelIDs, err := ctx.chunkRelIDs(ht)
	if err != nil {
		return err
	}
	log.V(2).Infof("expanding hypertable %s.%s into %d chunks", ht.SchemaName, ht.TableName, len(chunkRelIDs))

	// Attaching partition info makes the host planner treat the
	// inheritance children as parts of a partitioned relation, enabling
	// partitionwise aggregation.
	if root.Version.SupportsPartitionwiseAggregate() {
		if err := buildHypertablePartitionInfo(cat, ht, rel, len(chunkRelIDs)); err != nil {
			return err
		}
	}

	parentAttrs := cat.Attributes(ht.RelID)
	appInfos := make([]*planner.AppendRelInfo, 0, len(chunkRelIDs))

	for _, childOID := range chunkRelIDs {
		// The child entry copies the parent's but is no inheritance
		// parent itself. Permission checks and row security stay attached
		// to the parent entry only; duplicating them per chunk would make
		// child RLS settings override the parent's.
		childRTE := &planner.RangeTblEntry{
			RelID:         childOID,
			RelKind:       cat.RelationKind(childOID),
			Inh:           false,
			RequiredPerms: 0,
			SecurityQuals: nil,
		}
		parse.RangeTable = append(parse.RangeTable, childRTE)
		childIndex := plantree.RelIndex(len(parse.RangeTable))
		root.SimpleRTEArray = append(root.SimpleRTEArray, childRTE)
		root.SimpleRelArray = append(root.SimpleRelArray, nil)

		translated, err := inhTranslationList(parentAttrs, cat.Attributes(childOID), childIndex)
		if err != nil {
			return err
		}
		appInfos = append(appInfos, &planner.AppendRelInfo{
			ParentRel:      rti,
			ChildRel:       childIndex,
			ParentRelOID:   ht.RelID,
			TranslatedVars: translated,
		})
	}

	root.AppendRelList = append(root.AppendRelList, appInfos...)
	return nil
}

// inhTranslationList maps every parent column to the child column of the
// same name. Chunks share the hypertable's column layout by construction,
// so a missing column is an invariant violation, not a user error.
func inhTranslationList(parentAttrs, childAttrs []catalog.Attribute, childIndex plantree.RelIndex) ([]*plantree.Var, error) {
	out := make([]*plantree.Var, 0, len(parentAttrs))
	for _, pa := range parentAttrs {
		ca, ok := attributeByName(childAttrs, pa.Name)
		if !ok {
			return nil, tserrors.Errorf(tserrors.CodeInternal,
				"could not find column %q in child relation", pa.Name)
		}
		out = append(out, &plantree.Var{Rel: childIndex, AttNo: ca.Num, Type: ca.Type})
	}
	return out, nil
}

func attributeByName(attrs []catalog.Attribute, name string) (catalog.Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return catalog.Attribute{}, false
}
