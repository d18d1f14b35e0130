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

package plantree

// Visit defines the signature of a function that can be used to visit
// all nodes of an expression tree.
type Visit func(node Expr) (kontinue bool, err error)

// Walk calls visit on every node. If visit returns false, the underlying
// nodes are skipped.
func Walk(visit Visit, nodes ...Expr) error {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		kontinue, err := visit(node)
		if err != nil {
			return err
		}
		if !kontinue {
			continue
		}
		switch n := node.(type) {
		case *BoolExpr:
			if err := Walk(visit, n.Args...); err != nil {
				return err
			}
		case *OpExpr:
			if err := Walk(visit, n.Args...); err != nil {
				return err
			}
		case *FuncExpr:
			if err := Walk(visit, n.Args...); err != nil {
				return err
			}
		case *Const, *Var:
			// leaves
		}
	}
	return nil
}

// SplitAndExpression breaks up the Expr into AND-separated conditions
// and appends them to filters.
func SplitAndExpression(filters []Expr, node Expr) []Expr {
	if node == nil {
		return filters
	}
	if b, ok := node.(*BoolExpr); ok && b.Op == AndOp {
		for _, arg := range b.Args {
			filters = SplitAndExpression(filters, arg)
		}
		return filters
	}
	return append(filters, node)
}

// AndExpressions joins the given expressions into a single conjunction,
// flattening where possible. Returns nil for an empty input.
func AndExpressions(exprs ...Expr) Expr {
	var args []Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		args = SplitAndExpression(args, e)
	}
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	default:
		return &BoolExpr{Op: AndOp, Args: args}
	}
}

// RelIDs returns the set of relations referenced by the expression.
func RelIDs(node Expr) RelSet {
	var rs RelSet
	_ = Walk(func(n Expr) (bool, error) {
		if v, ok := n.(*Var); ok {
			rs = rs.With(v.Rel)
		}
		return true, nil
	}, node)
	return rs
}
