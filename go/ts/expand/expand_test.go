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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/planenv"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/tserrors"
	"github.com/tong0711/timescaledb/go/ts/types"
)

const testParentOID = catalog.RelOID(1000)

type testEnv struct {
	cat        *catalog.MemCatalog
	ht         *catalog.Hypertable
	bucketFunc types.FuncID
}

// newTestEnv creates a hypertable "metrics"(time, device, temp) with a
// bucketed time dimension and, optionally, a device dimension.
func newTestEnv(t *testing.T, twoDim bool) *testEnv {
	t.Helper()
	cat := catalog.NewMemCatalog()
	bucketFunc := cat.RegisterFunction("public", "time_bucket", []types.TypeID{types.TypeInt8, types.TypeInt8})

	dims := []catalog.Dimension{{
		ID:          1,
		ColumnAttNo: 1,
		ColumnName:  "time",
		ColumnType:  types.TypeInt8,
		Partitioning: &catalog.Partitioning{
			Func: bucketFunc,
			Expr: &plantree.FuncExpr{
				Func:    bucketFunc,
				RetType: types.TypeInt8,
				Args: []plantree.Expr{
					plantree.NewInt8Const(10),
					&plantree.Var{Rel: 1, AttNo: 1, Type: types.TypeInt8},
				},
			},
		},
	}}
	if twoDim {
		dims = append(dims, catalog.Dimension{
			ID:          2,
			ColumnAttNo: 2,
			ColumnName:  "device",
			ColumnType:  types.TypeInt8,
		})
	}

	ht := &catalog.Hypertable{
		ID:         1,
		RelID:      testParentOID,
		SchemaName: "public",
		TableName:  "metrics",
		Space:      &catalog.Hyperspace{Dimensions: dims},
	}
	cat.AddHypertable(ht, []catalog.Attribute{
		{Num: 1, Name: "time", Type: types.TypeInt8},
		{Num: 2, Name: "device", Type: types.TypeInt8},
		{Num: 3, Name: "temp", Type: types.TypeInt8},
	})
	return &testEnv{cat: cat, ht: ht, bucketFunc: bucketFunc}
}

// addChunks registers chunks with ids 1..n covering the given time
// ranges.
func (env *testEnv) addChunks(ranges ...[2]int64) {
	for i, rng := range ranges {
		env.cat.AddChunk(&catalog.Chunk{
			ID:           int32(i + 1),
			HypertableID: env.ht.ID,
			RelID:        testParentOID + catalog.RelOID(i+1),
			Slices:       []catalog.Slice{{DimensionID: 1, Start: rng[0], End: rng[1]}},
		})
	}
}

func (env *testEnv) timeVar() *plantree.Var {
	return &plantree.Var{Rel: 1, AttNo: 1, Type: types.TypeInt8}
}

// bucketCmp builds time_bucket(width, time) OP value.
func (env *testEnv) bucketCmp(op types.OpID, width, value int64) plantree.Expr {
	return &plantree.OpExpr{Op: op, Args: []plantree.Expr{
		&plantree.FuncExpr{
			Func:    env.bucketFunc,
			RetType: types.TypeInt8,
			Args:    []plantree.Expr{plantree.NewInt8Const(width), env.timeVar()},
		},
		plantree.NewInt8Const(value),
	}}
}

// chunksIn builds the explicit selection marker over the target rel.
func (env *testEnv) chunksIn(ids ...int64) plantree.Expr {
	return &plantree.FuncExpr{
		Func:    catalog.ChunksInFuncID,
		RetType: types.TypeBool,
		Args: []plantree.Expr{
			&plantree.Var{Rel: 1, AttNo: 0, Type: types.TypeRecord},
			&plantree.Const{Type: types.TypeInt4Array, Val: ids},
		},
	}
}

// newRoot builds planner state for SELECT ... FROM metrics WHERE quals.
func (env *testEnv) newRoot(quals plantree.Expr) *planner.PlannerInfo {
	parse := &planner.Query{
		RangeTable: []*planner.RangeTblEntry{{
			RelID:   testParentOID,
			RelKind: catalog.RelKindTable,
			Inh:     true,
		}},
		JoinTree: &plantree.FromExpr{
			From:  []plantree.TreeNode{&plantree.RangeTblRef{Rel: 1}},
			Quals: quals,
		},
	}
	return planner.NewPlannerInfo(13, parse)
}

func (env *testEnv) expand(t *testing.T, root *planner.PlannerInfo) *planner.RelOptInfo {
	t.Helper()
	rel := root.SimpleRelArray[1]
	require.NoError(t, ExpandHypertableChunks(env.cat, root, env.ht, rel))
	return rel
}

// expandedChunkIDs maps the append children back to chunk ids, in
// expansion order.
func (env *testEnv) expandedChunkIDs(root *planner.PlannerInfo) []int32 {
	byRelID := make(map[catalog.RelOID]int32)
	for _, ch := range env.cat.Chunks(env.ht.ID, catalog.NoLock) {
		byRelID[ch.RelID] = ch.ID
	}
	var out []int32
	for _, appInfo := range root.AppendRelList {
		out = append(out, byRelID[root.SimpleRTEArray[appInfo.ChildRel].RelID])
	}
	return out
}

func TestExpandBucketLowerBound(t *testing.T) {
	// WHERE time_bucket(10, time) > 109 excludes chunks whose upper
	// bound is at or below 109
	env := newTestEnv(t, false)
	env.addChunks([2]int64{90, 100}, [2]int64{100, 109}, [2]int64{100, 110}, [2]int64{110, 120})

	root := env.newRoot(env.bucketCmp(types.OpIntGt, 10, 109))
	env.expand(t, root)
	assert.Equal(t, []int32{3, 4}, env.expandedChunkIDs(root))
}

func TestExpandBucketUpperBound(t *testing.T) {
	// WHERE time_bucket(10, time) < 100 excludes chunks starting at or
	// above 100 + width, and must keep a chunk covering [95, 105)
	env := newTestEnv(t, false)
	env.addChunks([2]int64{80, 90}, [2]int64{95, 105}, [2]int64{105, 110}, [2]int64{110, 120}, [2]int64{120, 130})

	orig := env.bucketCmp(types.OpIntLt, 10, 100)
	root := env.newRoot(orig)
	env.expand(t, root)
	assert.Equal(t, []int32{1, 2, 3}, env.expandedChunkIDs(root))

	// the widened pruning bound must not leak into the executed query
	assert.Same(t, plantree.Expr(orig), root.Parse.JoinTree.Quals)
}

func TestExpandExplicitChunks(t *testing.T) {
	// chunks_in wins over any other predicate on the same relation,
	// regardless of their order in the quals
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20}, [2]int64{20, 30}, [2]int64{30, 40},
		[2]int64{40, 50}, [2]int64{50, 60}, [2]int64{60, 70})

	quals := []plantree.Expr{
		env.bucketCmp(types.OpIntGt, 10, 1000), // would prune everything
		env.chunksIn(3, 7),
	}
	for i := 0; i < 2; i++ {
		root := env.newRoot(plantree.AndExpressions(quals...))
		env.expand(t, root)
		assert.Equal(t, []int32{3, 7}, env.expandedChunkIDs(root))
		quals[0], quals[1] = quals[1], quals[0]
	}
}

func TestExpandExplicitChunksKeepArrayOrder(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20}, [2]int64{20, 30})

	root := env.newRoot(env.chunksIn(3, 1))
	env.expand(t, root)
	assert.Equal(t, []int32{3, 1}, env.expandedChunkIDs(root))
}

func TestExpandExplicitChunkNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	root := env.newRoot(env.chunksIn(42))
	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeNotFound, tserrors.ErrCode(err))
	assert.ErrorContains(t, err, "chunk id 42 not found")
}

func TestExpandExplicitForeignChunk(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	// a chunk of a different hypertable must never resolve
	other := &catalog.Hypertable{ID: 2, RelID: 2000, SchemaName: "public", TableName: "other",
		Space: &catalog.Hyperspace{Dimensions: []catalog.Dimension{{ID: 5, ColumnAttNo: 1, ColumnName: "time", ColumnType: types.TypeInt8}}}}
	env.cat.AddHypertable(other, []catalog.Attribute{{Num: 1, Name: "time", Type: types.TypeInt8}})
	env.cat.AddChunk(&catalog.Chunk{ID: 99, HypertableID: 2, RelID: 2001})

	root := env.newRoot(env.chunksIn(99))
	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeInvalidArgument, tserrors.ErrCode(err))
	assert.ErrorContains(t, err, `chunk id 99 does not belong to hypertable "metrics"`)
}

func TestExpandExplicitChunkBadFirstArg(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	marker := env.chunksIn(1).(*plantree.FuncExpr)
	// still references the target relation, but is not a plain record Var
	marker.Args[0] = &plantree.OpExpr{Op: types.OpInt8Pl, Args: []plantree.Expr{
		env.timeVar(), plantree.NewInt8Const(1),
	}}

	root := env.newRoot(marker)
	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeInvalidArgument, tserrors.ErrCode(err))
	assert.ErrorContains(t, err, "first parameter for chunks_in function needs to be record")
}

func TestExpandExplicitChunkBadSecondArg(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	marker := env.chunksIn(1).(*plantree.FuncExpr)
	marker.Args[1] = env.timeVar()

	root := env.newRoot(marker)
	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeUnimplemented, tserrors.ErrCode(err))
}

func TestExpandNoRestrictionsUsesAllChildren(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20})

	root := env.newRoot(nil)
	env.expand(t, root)
	assert.Equal(t, []int32{1, 2}, env.expandedChunkIDs(root))
}

func TestExpandOrderedAppend(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20}, [2]int64{20, 30})

	for _, desc := range []bool{false, true} {
		root := env.newRoot(nil)
		root.Parse.SortClause = []planner.SortGroupClause{{Expr: env.timeVar(), Descending: desc}}
		root.LimitTuples = 100

		rel := env.expand(t, root)
		require.NotNil(t, rel.Private)
		assert.True(t, rel.Private.AppendsOrdered)
		if desc {
			assert.Equal(t, []int32{3, 2, 1}, env.expandedChunkIDs(root))
		} else {
			assert.Equal(t, []int32{1, 2, 3}, env.expandedChunkIDs(root))
		}
	}
}

func TestExpandOrderedAppendRequiresLimit(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20})

	root := env.newRoot(nil)
	root.Parse.SortClause = []planner.SortGroupClause{{Expr: env.timeVar()}}
	// no LIMIT: LimitTuples stays -1

	rel := env.expand(t, root)
	assert.Nil(t, rel.Private)
}

func TestExpandOrderedAppendHonorsToggles(t *testing.T) {
	tcases := []struct {
		key string
		val bool
	}{
		{planenv.KeyEnableOrderedAppend, false},
		{planenv.KeyDisableOptimizations, true},
	}
	for _, tc := range tcases {
		env := newTestEnv(t, false)
		env.addChunks([2]int64{0, 10}, [2]int64{10, 20})

		viper.Set(tc.key, tc.val)
		t.Cleanup(func() { viper.Set(planenv.KeyEnableOrderedAppend, true) })
		t.Cleanup(func() { viper.Set(planenv.KeyDisableOptimizations, false) })

		root := env.newRoot(nil)
		root.Parse.SortClause = []planner.SortGroupClause{{Expr: env.timeVar()}}
		root.LimitTuples = 100

		rel := env.expand(t, root)
		assert.Nil(t, rel.Private, "toggle %s=%v must force the unordered path", tc.key, tc.val)

		viper.Set(planenv.KeyEnableOrderedAppend, true)
		viper.Set(planenv.KeyDisableOptimizations, false)
	}
}

func TestExpandOrderedAppendNeedsSingleDimension(t *testing.T) {
	env := newTestEnv(t, true)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20})

	root := env.newRoot(nil)
	root.Parse.SortClause = []planner.SortGroupClause{{Expr: env.timeVar()}}
	root.LimitTuples = 100

	rel := env.expand(t, root)
	assert.Nil(t, rel.Private)
}

func TestExpandPartitionScheme(t *testing.T) {
	env := newTestEnv(t, true)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20}, [2]int64{20, 30})

	root := env.newRoot(nil)
	root.Parse.GroupClause = []plantree.Expr{
		env.timeVar(),
		&plantree.Var{Rel: 1, AttNo: 2, Type: types.TypeInt8},
	}

	rel := env.expand(t, root)
	require.NotNil(t, rel.PartScheme)
	assert.Equal(t, 2, rel.PartScheme.PartAtts)
	assert.Equal(t, planner.PartitionStrategyMultidim, rel.PartScheme.Strategy)
	assert.Equal(t, 3, rel.NParts)

	// the bucketed dimension accepts the raw column or the bucketing call
	require.Len(t, rel.PartExprs, 2)
	assert.Len(t, rel.PartExprs[0], 2)
	assert.Len(t, rel.PartExprs[1], 1)
	assert.Len(t, rel.NullablePartExprs, 2)
}

func TestExpandNoPartitionSchemeOnOldVersions(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	root := env.newRoot(nil)
	root.Version = 10

	rel := env.expand(t, root)
	assert.Nil(t, rel.PartScheme)
	assert.Zero(t, rel.NParts)
}

func TestExpandChildEntries(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10}, [2]int64{10, 20})

	root := env.newRoot(nil)
	rte := root.SimpleRTEArray[1]
	rte.RequiredPerms = 2
	rte.SecurityQuals = []plantree.Expr{plantree.NewInt8Const(1)}

	env.expand(t, root)

	require.Len(t, root.Parse.RangeTable, 3)
	require.Len(t, root.AppendRelList, 2)
	assert.True(t, rte.Inh)

	for i, appInfo := range root.AppendRelList {
		childIdx := appInfo.ChildRel
		child := root.SimpleRTEArray[childIdx]
		assert.Equal(t, plantree.RelIndex(i+2), childIdx)
		assert.Same(t, root.Parse.RangeTable[childIdx-1], child)
		assert.Nil(t, root.SimpleRelArray[childIdx])

		// permission and row-security checks stay on the parent
		assert.False(t, child.Inh)
		assert.Zero(t, child.RequiredPerms)
		assert.Empty(t, child.SecurityQuals)

		assert.Equal(t, plantree.RelIndex(1), appInfo.ParentRel)
		assert.Equal(t, testParentOID, appInfo.ParentRelOID)
		require.Len(t, appInfo.TranslatedVars, 3)
		for attNo, v := range appInfo.TranslatedVars {
			assert.Equal(t, childIdx, v.Rel)
			assert.Equal(t, plantree.AttrNumber(attNo+1), v.AttNo)
		}
	}
}

func TestExpandRejectsRowMarks(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	root := env.newRoot(nil)
	root.Parse.RowMarks = []*planner.PlanRowMark{{Rel: 1, MarkType: planner.RowMarkShare}}

	assert.False(t, ValidExpansionTarget(env.ht, root.Parse, root.SimpleRTEArray[1]))

	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeFailedPrecondition, tserrors.ErrCode(err))
	assert.ErrorContains(t, err, "unexpected permissions requested")
}

func TestExpandRejectsResultRelation(t *testing.T) {
	env := newTestEnv(t, false)
	env.addChunks([2]int64{0, 10})

	root := env.newRoot(nil)
	root.Parse.ResultRelation = 1

	assert.False(t, ValidExpansionTarget(env.ht, root.Parse, root.SimpleRTEArray[1]))

	err := ExpandHypertableChunks(env.cat, root, env.ht, root.SimpleRelArray[1])
	require.Error(t, err)
	assert.Equal(t, tserrors.CodeInternal, tserrors.ErrCode(err))
}

func TestValidExpansionTarget(t *testing.T) {
	env := newTestEnv(t, false)
	root := env.newRoot(nil)
	rte := root.SimpleRTEArray[1]

	assert.True(t, ValidExpansionTarget(env.ht, root.Parse, rte))
	assert.False(t, ValidExpansionTarget(nil, root.Parse, rte))

	rte.Inh = false
	assert.False(t, ValidExpansionTarget(env.ht, root.Parse, rte))
}
