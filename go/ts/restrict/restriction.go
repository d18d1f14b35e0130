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

// Package restrict indexes single-relation restriction clauses against a
// hypertable's dimensions and prunes the chunk set by range overlap.
// Pruning is conservative in one direction only: a clause the index
// cannot interpret prunes nothing, so the resolved set is always a
// superset of the chunks that could hold matching rows.
package restrict

import (
	"github.com/tong0711/timescaledb/go/ts/plantree"
)

// Restriction is a predicate proven to reference exactly one base
// relation, derived from the query's quals.
type Restriction struct {
	Clause plantree.Expr
	RelIDs plantree.RelSet
}

// Make wraps a derived clause with the relations it touches.
func Make(clause plantree.Expr, relIDs plantree.RelSet) *Restriction {
	return &Restriction{Clause: clause, RelIDs: relIDs}
}
