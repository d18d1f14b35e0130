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

package command

import (
	"fmt"

	"github.com/tong0711/timescaledb/go/ts/catalog"
	"github.com/tong0711/timescaledb/go/ts/planner"
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// fixture is the YAML description of a hypertable layout plus one query
// against it.
type fixture struct {
	Hypertable struct {
		Schema     string             `json:"schema"`
		Table      string             `json:"table"`
		Columns    []fixtureColumn    `json:"columns"`
		Dimensions []fixtureDimension `json:"dimensions"`
	} `json:"hypertable"`
	Chunks         []fixtureChunk     `json:"chunks"`
	Predicates     []fixturePredicate `json:"predicates"`
	ExplicitChunks []int64            `json:"explicit_chunks,omitempty"`
	OrderBy        *fixtureOrderBy    `json:"order_by,omitempty"`
	Limit          float64            `json:"limit,omitempty"`
}

type fixtureColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type fixtureDimension struct {
	Column      string `json:"column"`
	BucketWidth *int64 `json:"bucket_width,omitempty"`
}

type fixtureChunk struct {
	ID int32 `json:"id"`
	// Ranges maps dimension column name to [start, end).
	Ranges map[string][]int64 `json:"ranges"`
}

type fixturePredicate struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  int64  `json:"value"`
	// BucketWidth wraps the column in time_bucket(width, column).
	BucketWidth *int64 `json:"bucket_width,omitempty"`
}

type fixtureOrderBy struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

const fixtureParentOID = catalog.RelOID(1000)

func fixtureChunkOID(id int32) catalog.RelOID {
	return fixtureParentOID + catalog.RelOID(id)
}

func parseTypeName(name string) (types.TypeID, error) {
	switch name {
	case "int4":
		return types.TypeInt4, nil
	case "int8", "":
		return types.TypeInt8, nil
	case "date":
		return types.TypeDate, nil
	case "timestamp":
		return types.TypeTimestamp, nil
	case "timestamptz":
		return types.TypeTimestampTz, nil
	default:
		return types.TypeInvalid, fmt.Errorf("unsupported column type %q", name)
	}
}

func parseOpName(op string, columnType types.TypeID) (types.OpID, error) {
	var s types.Strategy
	switch op {
	case "<":
		s = types.StrategyLess
	case "<=":
		s = types.StrategyLessEqual
	case "=":
		s = types.StrategyEqual
	case ">=":
		s = types.StrategyGreaterEqual
	case ">":
		s = types.StrategyGreater
	default:
		return types.OpInvalid, fmt.Errorf("unsupported operator %q", op)
	}
	id, ok := types.ComparisonOperator(columnType, s)
	if !ok {
		return types.OpInvalid, fmt.Errorf("no %q operator for type %s", op, columnType)
	}
	return id, nil
}

// buildFixture turns the parsed fixture into a catalog and planner state
// ready for expansion.
func buildFixture(fx *fixture) (*catalog.MemCatalog, *planner.PlannerInfo, *catalog.Hypertable, error) {
	cat := catalog.NewMemCatalog()

	attrs := make([]catalog.Attribute, 0, len(fx.Hypertable.Columns))
	for i, col := range fx.Hypertable.Columns {
		typ, err := parseTypeName(col.Type)
		if err != nil {
			return nil, nil, nil, err
		}
		attrs = append(attrs, catalog.Attribute{
			Num:  plantree.AttrNumber(i + 1),
			Name: col.Name,
			Type: typ,
		})
	}
	attrByName := func(name string) (catalog.Attribute, error) {
		for _, a := range attrs {
			if a.Name == name {
				return a, nil
			}
		}
		return catalog.Attribute{}, fmt.Errorf("unknown column %q", name)
	}

	var dims []catalog.Dimension
	for i, d := range fx.Hypertable.Dimensions {
		att, err := attrByName(d.Column)
		if err != nil {
			return nil, nil, nil, err
		}
		dim := catalog.Dimension{
			ID:          int32(i + 1),
			ColumnAttNo: att.Num,
			ColumnName:  att.Name,
			ColumnType:  att.Type,
		}
		if d.BucketWidth != nil {
			funcID := bucketFuncID(cat, att.Type)
			dim.Partitioning = &catalog.Partitioning{
				Func: funcID,
				Expr: &plantree.FuncExpr{
					Func:    funcID,
					RetType: att.Type,
					Args: []plantree.Expr{
						plantree.NewInt8Const(*d.BucketWidth),
						&plantree.Var{Rel: 1, AttNo: att.Num, Type: att.Type},
					},
				},
			}
		}
		dims = append(dims, dim)
	}

	ht := &catalog.Hypertable{
		ID:         1,
		RelID:      fixtureParentOID,
		SchemaName: fx.Hypertable.Schema,
		TableName:  fx.Hypertable.Table,
		Space:      &catalog.Hyperspace{Dimensions: dims},
	}
	cat.AddHypertable(ht, attrs)

	for _, ch := range fx.Chunks {
		chunk := &catalog.Chunk{
			ID:           ch.ID,
			HypertableID: ht.ID,
			RelID:        fixtureChunkOID(ch.ID),
		}
		for col, rng := range ch.Ranges {
			if len(rng) != 2 {
				return nil, nil, nil, fmt.Errorf("chunk %d: range for %q needs [start, end)", ch.ID, col)
			}
			dim, ok := dimensionByColumn(dims, col)
			if !ok {
				return nil, nil, nil, fmt.Errorf("chunk %d: %q is not a dimension column", ch.ID, col)
			}
			chunk.Slices = append(chunk.Slices, catalog.Slice{
				DimensionID: dim.ID,
				Start:       rng[0],
				End:         rng[1],
			})
		}
		cat.AddChunk(chunk)
	}

	parse, err := buildQuery(fx, cat, attrByName)
	if err != nil {
		return nil, nil, nil, err
	}
	root := planner.NewPlannerInfo(13, parse)
	if fx.Limit > 0 {
		root.LimitTuples = fx.Limit
	}
	return cat, root, ht, nil
}

func dimensionByColumn(dims []catalog.Dimension, col string) (catalog.Dimension, bool) {
	for _, d := range dims {
		if d.ColumnName == col {
			return d, true
		}
	}
	return catalog.Dimension{}, false
}

// bucketFuncID returns the time_bucket registration for the column type,
// registering it on first use.
func bucketFuncID(cat *catalog.MemCatalog, columnType types.TypeID) types.FuncID {
	argTypes := []types.TypeID{types.TypeInt8, columnType}
	if id, ok := cat.FunctionID("public", "time_bucket", argTypes); ok {
		return id
	}
	return cat.RegisterFunction("public", "time_bucket", argTypes)
}

func buildQuery(fx *fixture, cat *catalog.MemCatalog, attrByName func(string) (catalog.Attribute, error)) (*planner.Query, error) {
	var quals []plantree.Expr

	for _, p := range fx.Predicates {
		att, err := attrByName(p.Column)
		if err != nil {
			return nil, err
		}
		opID, err := parseOpName(p.Op, att.Type)
		if err != nil {
			return nil, err
		}
		var lhs plantree.Expr = &plantree.Var{Rel: 1, AttNo: att.Num, Type: att.Type}
		if p.BucketWidth != nil {
			lhs = &plantree.FuncExpr{
				Func:    bucketFuncID(cat, att.Type),
				RetType: att.Type,
				Args:    []plantree.Expr{plantree.NewInt8Const(*p.BucketWidth), lhs},
			}
		}
		quals = append(quals, &plantree.OpExpr{
			Op:   opID,
			Args: []plantree.Expr{lhs, plantree.NewInt8Const(p.Value)},
		})
	}

	if len(fx.ExplicitChunks) > 0 {
		markerID, ok := cat.FunctionID(catalog.InternalSchema, catalog.ChunksInFuncName,
			[]types.TypeID{types.TypeRecord, types.TypeInt4Array})
		if !ok {
			return nil, fmt.Errorf("chunks_in function not registered")
		}
		quals = append(quals, &plantree.FuncExpr{
			Func:    markerID,
			RetType: types.TypeBool,
			Args: []plantree.Expr{
				&plantree.Var{Rel: 1, AttNo: 0, Type: types.TypeRecord},
				&plantree.Const{Type: types.TypeInt4Array, Val: append([]int64(nil), fx.ExplicitChunks...)},
			},
		})
	}

	parse := &planner.Query{
		RangeTable: []*planner.RangeTblEntry{{
			RelID:   fixtureParentOID,
			RelKind: catalog.RelKindTable,
			Inh:     true,
		}},
		JoinTree: &plantree.FromExpr{
			From:  []plantree.TreeNode{&plantree.RangeTblRef{Rel: 1}},
			Quals: plantree.AndExpressions(quals...),
		},
	}

	if fx.OrderBy != nil {
		att, err := attrByName(fx.OrderBy.Column)
		if err != nil {
			return nil, err
		}
		parse.SortClause = []planner.SortGroupClause{{
			Expr:       &plantree.Var{Rel: 1, AttNo: att.Num, Type: att.Type},
			Descending: fx.OrderBy.Desc,
		}}
	}
	return parse, nil
}
