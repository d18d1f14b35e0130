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
	"sync/atomic"

	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/restrict"
	"github.com/tong0711/timescaledb/go/ts/tserrors"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// bucketFuncName is the name bucketing functions are registered under.
const bucketFuncName = "time_bucket"

// collectQualCtx accumulates the output of one qualifier-collection walk.
// It lives for exactly one ExpandHypertableChunks call.
type collectQualCtx struct {
	cat  catalog.Catalog
	root *planner.PlannerInfo
	rel  *planner.RelOptInfo

	restrictions []*restrict.Restriction

	// chunkExclusionFunc is the chunks_in marker, if the query has one
	// for this relation. Once set, restriction collection stops: explicit
	// selection is authoritative and exclusive.
	chunkExclusionFunc *plantree.FuncExpr
}

// chunksInFuncID caches the marker function's catalog identity for the
// process lifetime. Catalog identities are stable once the extension is
// loaded and re-resolution is idempotent, so a plain atomic is enough.
var chunksInFuncID atomic.Int32

func initChunkExclusionFunc(cat catalog.Catalog) (types.FuncID, error) {
	if id := chunksInFuncID.Load(); id != 0 {
		return types.FuncID(id), nil
	}
	id, ok := cat.FunctionID(catalog.InternalSchema, catalog.ChunksInFuncName,
		[]types.TypeID{types.TypeRecord, types.TypeInt4Array})
	if !ok {
		return types.FuncInvalid, tserrors.New(tserrors.CodeInternal, "chunks_in function not found in catalog")
	}
	chunksInFuncID.Store(int32(id))
	return id, nil
}

func isChunkExclusionFunc(node plantree.Expr, id types.FuncID) bool {
	f, ok := node.(*plantree.FuncExpr)
	return ok && f.Func == id
}

func (ctx *collectQualCtx) isBucketFunc(node plantree.Expr) bool {
	f, ok := node.(*plantree.FuncExpr)
	return ok && ctx.cat.FunctionName(f.Func) == bucketFuncName
}

// processQuals derives restrictions for the target relation from one
// qual expression and returns the qual with any chunks_in marker removed.
// The marker is only that, a marker: it must not survive into the plan
// because executing it is an error.
func (ctx *collectQualCtx) processQuals(quals plantree.Expr, markerID types.FuncID) (plantree.Expr, error) {
	leaves := plantree.SplitAndExpression(nil, quals)
	kept := leaves[:0]

	for i, qual := range leaves {
		relIDs := plantree.RelIDs(qual)

		// skip expressions not exclusively on the current rel
		if relIDs.NumRels() != 1 || !relIDs.IsMember(ctx.rel.RelIndex) {
			kept = append(kept, qual)
			continue
		}

		if isChunkExclusionFunc(qual, markerID) {
			f := qual.(*plantree.FuncExpr)
			if len(f.Args) != 2 {
				return nil, tserrors.New(tserrors.CodeInternal, "chunks_in function takes two arguments")
			}
			if _, ok := f.Args[0].(*plantree.Var); !ok {
				return nil, tserrors.New(tserrors.CodeInvalidArgument,
					"first parameter for chunks_in function needs to be record")
			}
			ctx.chunkExclusionFunc = f
			ctx.restrictions = nil
			kept = append(kept, leaves[i+1:]...)
			return plantree.AndExpressions(kept...), nil
		}

		// Restrictions are derived from the qual, never written back: the
		// bucket rewrite widens the predicate, which is sound for pruning
		// but would change query results if executed.
		derived := qual
		if op, ok := qual.(*plantree.OpExpr); ok && len(op.Args) == 2 {
			left, right := op.Args[0], op.Args[1]
			_, lconst := left.(*plantree.Const)
			_, rconst := right.(*plantree.Const)
			if (ctx.isBucketCall(left) && rconst) || (lconst && ctx.isBucketCall(right)) {
				if rewritten, changed := transformBucketComparison(op); changed {
					derived = rewritten
				}
			}
		}

		ctx.restrictions = append(ctx.restrictions, restrict.Make(derived, relIDs))
		kept = append(kept, qual)
	}
	return plantree.AndExpressions(kept...), nil
}

// isBucketCall reports whether node is a two-argument bucketing call; the
// rewrite rules only hold for the (width, column) form.
func (ctx *collectQualCtx) isBucketCall(node plantree.Expr) bool {
	f, ok := node.(*plantree.FuncExpr)
	return ok && len(f.Args) == 2 && ctx.isBucketFunc(f)
}

// collectQuals walks the join tree, deriving restrictions from every
// FROM and JOIN ON qual the target relation participates in. The walk
// stops early once a chunks_in marker is found.
func (ctx *collectQualCtx) collectQuals(node plantree.TreeNode, markerID types.FuncID) error {
	if node == nil || ctx.chunkExclusionFunc != nil {
		return nil
	}
	switch n := node.(type) {
	case *plantree.FromExpr:
		quals, err := ctx.processQuals(n.Quals, markerID)
		if err != nil {
			return err
		}
		n.Quals = quals
		for _, child := range n.From {
			if err := ctx.collectQuals(child, markerID); err != nil {
				return err
			}
		}
	case *plantree.JoinExpr:
		quals, err := ctx.processQuals(n.Quals, markerID)
		if err != nil {
			return err
		}
		n.Quals = quals
		if err := ctx.collectQuals(n.Left, markerID); err != nil {
			return err
		}
		return ctx.collectQuals(n.Right, markerID)
	case *plantree.RangeTblRef:
		// leaf
	}
	return nil
}
