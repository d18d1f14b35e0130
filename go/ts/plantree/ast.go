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

// Package plantree defines the expression and join trees handed to us by
// the host planner. The node set is closed: every consumer dispatches
// with a type switch over the kinds below.
package plantree

import "github.com/tong0711/timescaledb/go/ts/types"

// RelIndex is a 1-based index into the query's range table.
type RelIndex int

// AttrNumber is a 1-based column number within a relation.
type AttrNumber int16

// Expr is an expression tree node.
type Expr interface {
	iExpr()
}

// BoolOp is the junction kind of a BoolExpr.
type BoolOp int8

const (
	AndOp BoolOp = iota
	OrOp
)

// BoolExpr is a boolean junction over two or more arguments.
type BoolExpr struct {
	Op   BoolOp
	Args []Expr
}

// OpExpr is an operator application. Comparison and arithmetic operators
// take exactly two arguments.
type OpExpr struct {
	Op   types.OpID
	Args []Expr
}

// FuncExpr is a function call. RetType is the declared result type.
type FuncExpr struct {
	Func    types.FuncID
	RetType types.TypeID
	Args    []Expr
}

// Const is a typed constant value.
type Const struct {
	Type types.TypeID
	Val  types.Datum
	Null bool
}

// Var is a reference to a column of a range-table relation.
type Var struct {
	Rel   RelIndex
	AttNo AttrNumber
	Type  types.TypeID
}

func (*BoolExpr) iExpr() {}
func (*OpExpr) iExpr()   {}
func (*FuncExpr) iExpr() {}
func (*Const) iExpr()    {}
func (*Var) iExpr()      {}

// TreeNode is a join-tree node. The join tree carries the query's FROM
// structure; its quals are Exprs.
type TreeNode interface {
	iTreeNode()
}

// RangeTblRef is a leaf of the join tree referencing one range-table
// entry.
type RangeTblRef struct {
	Rel RelIndex
}

// JoinExpr is an explicit join with an ON condition.
type JoinExpr struct {
	Left  TreeNode
	Right TreeNode
	Quals Expr
}

// FromExpr is a FROM list with the WHERE clause attached as quals.
type FromExpr struct {
	From  []TreeNode
	Quals Expr
}

func (*RangeTblRef) iTreeNode() {}
func (*JoinExpr) iTreeNode()    {}
func (*FromExpr) iTreeNode()    {}

// NewInt8Const returns an int8 constant.
func NewInt8Const(v int64) *Const {
	return &Const{Type: types.TypeInt8, Val: v}
}

// NewIntervalConst returns an interval constant.
func NewIntervalConst(iv types.Interval) *Const {
	return &Const{Type: types.TypeInterval, Val: iv}
}
