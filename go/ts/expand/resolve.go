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
	"github.com/tong0711/timescaledb/go/ts/planenv"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/restrict"
	"github.com/tong0711/timescaledb/go/ts/tserrors"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// explicitChunkRelIDs resolves the chunk relations named by a chunks_in
// marker, in array order. Unknown ids and chunks of a different
// hypertable are hard planning errors: an explicit selection that cannot
// be satisfied exactly must never silently widen or narrow.
func (ctx *collectQualCtx) explicitChunkRelIDs(ht *catalog.Hypertable) ([]catalog.RelOID, error) {
	arg := ctx.chunkExclusionFunc.Args[1]
	chunksArg, ok := arg.(*plantree.Const)
	if !ok || chunksArg.Type != types.TypeInt4Array {
		return nil, tserrors.New(tserrors.CodeUnimplemented,
			"second argument to chunks_in should contain only integer consts")
	}
	if chunksArg.Null {
		return nil, tserrors.New(tserrors.CodeInternal, "chunk id can't be NULL")
	}
	ids, ok := chunksArg.Val.([]int64)
	if !ok {
		return nil, tserrors.New(tserrors.CodeUnimplemented,
			"second argument to chunks_in should contain only integer consts")
	}

	var out []catalog.RelOID
	for _, id := range ids {
		chunk, ok := ctx.cat.ChunkByID(int32(id), catalog.NoLock)
		if !ok {
			return nil, tserrors.Errorf(tserrors.CodeNotFound, "chunk id %d not found", id)
		}
		if chunk.HypertableID != ht.ID {
			return nil, tserrors.Errorf(tserrors.CodeInvalidArgument,
				"chunk id %d does not belong to hypertable %q", id, ht.TableName)
		}
		out = append(out, chunk.RelID)
	}
	return out, nil
}

// shouldOrderAppend decides whether chunks should be resolved in sort
// order. Only worthwhile for single-dimension hypertables when the query
// has both an ORDER BY on the partitioning column and a finite LIMIT,
// and only when the toggles allow it.
func shouldOrderAppend(root *planner.PlannerInfo, rel *planner.RelOptInfo, ht *catalog.Hypertable) (reverse, ok bool) {
	if planenv.OptimizationsDisabled() || !planenv.OrderedAppendEnabled() {
		return false, false
	}
	if ht.Space.NumDimensions() != 1 || len(root.Parse.SortClause) == 0 || root.LimitTuples == -1 {
		return false, false
	}

	// the first sort key must be the partitioning column of the target
	first := root.Parse.SortClause[0]
	v, isVar := first.Expr.(*plantree.Var)
	if !isVar || v.Rel != rel.RelIndex || v.AttNo != ht.Space.Dimensions[0].ColumnAttNo {
		return false, false
	}
	return first.Descending, true
}

// findChildren resolves the unordered chunk set. When nothing could be
// turned into a usable restriction, the cached inheritance hierarchy is
// cheaper than testing every chunk's ranges.
func findChildren(hri *restrict.HypertableRestrictInfo, cat catalog.Catalog, ht *catalog.Hypertable, lock catalog.LockMode) []catalog.RelOID {
	if !hri.HasRestrictions() {
		return cat.InheritanceChildren(ht.RelID, lock)
	}
	return hri.ChunkRelIDs(cat, lock)
}

// chunkRelIDs produces the final chunk set for expansion. Explicit
// chunk exclusion takes precedence over restriction-based pruning.
func (ctx *collectQualCtx) chunkRelIDs(ht *catalog.Hypertable) ([]catalog.RelOID, error) {
	if ctx.chunkExclusionFunc != nil {
		return ctx.explicitChunkRelIDs(ht)
	}

	hri := restrict.NewHypertableRestrictInfo(ctx.rel.RelIndex, ht)
	hri.Add(ctx.restrictions)

	if reverse, ok := shouldOrderAppend(ctx.root, ctx.rel, ht); ok {
		if oids, ordered := hri.ChunkRelIDsOrdered(ctx.cat, catalog.AccessShareLock, reverse); ordered {
			ctx.rel.EnsurePrivate().AppendsOrdered = true
			return oids, nil
		}
	}
	return findChildren(hri, ctx.cat, ht, catalog.AccessShareLock), nil
}
