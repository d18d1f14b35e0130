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

// CloneExpr returns a deep copy of the expression. Rewrites always clone
// before mutating so the host planner's original tree stays intact.
func CloneExpr(node Expr) Expr {
	switch n := node.(type) {
	case nil:
		return nil
	case *BoolExpr:
		return &BoolExpr{Op: n.Op, Args: cloneArgs(n.Args)}
	case *OpExpr:
		return &OpExpr{Op: n.Op, Args: cloneArgs(n.Args)}
	case *FuncExpr:
		return &FuncExpr{Func: n.Func, RetType: n.RetType, Args: cloneArgs(n.Args)}
	case *Const:
		c := &Const{Type: n.Type, Null: n.Null, Val: n.Val}
		if arr, ok := n.Val.([]int64); ok {
			c.Val = append([]int64(nil), arr...)
		}
		return c
	case *Var:
		v := *n
		return &v
	}
	return node
}

func cloneArgs(args []Expr) []Expr {
	if args == nil {
		return nil
	}
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = CloneExpr(a)
	}
	return out
}
