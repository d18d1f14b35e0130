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

// Package catalog exposes the hypertable, dimension and chunk metadata
// the planner extension reads. All metadata is immutable for the duration
// of one planning pass; the catalog owns it and hands out pointers.
package catalog

import (
	"github.com/tong0711/timescaledb/go/ts/plantree"
	"github.com/tong0711/timescaledb/go/ts/types"
)

// InternalSchema is the schema that holds the extension's internal
// functions, including the chunks_in marker.
const InternalSchema = "_timescaledb_internal"

// RelOID identifies a relation.
type RelOID uint32

// InvalidRelOID is the zero RelOID.
const InvalidRelOID RelOID = 0

// RelKind is the relation kind tag of a range-table entry.
type RelKind byte

const (
	RelKindTable RelKind = 'r'
	RelKindView  RelKind = 'v'
)

// LockMode is the lock strength requested for a catalog access. Locks
// taken during planning are read locks and are held to end of planning,
// never upgraded.
type LockMode int

const (
	NoLock LockMode = iota
	AccessShareLock
	RowShareLock
	RowExclusiveLock
)

// Attribute is one column of a relation.
type Attribute struct {
	Num  plantree.AttrNumber
	Name string
	Type types.TypeID
}

// Partitioning carries the optional bucketing function of a dimension.
type Partitioning struct {
	// Func is the bucketing function's identity.
	Func types.FuncID

	// Expr is the bucketing call over the dimension column as it would
	// appear in a query. Used when synthesizing partition expressions
	// so a GROUP BY on the bucketed column still covers the dimension.
	Expr plantree.Expr
}

// Dimension is one partitioning dimension of a hypertable.
type Dimension struct {
	ID           int32
	ColumnAttNo  plantree.AttrNumber
	ColumnName   string
	ColumnType   types.TypeID
	Partitioning *Partitioning
}

// Hyperspace is the ordered set of partitioning dimensions.
type Hyperspace struct {
	Dimensions []Dimension
}

// NumDimensions returns the dimension count.
func (hs *Hyperspace) NumDimensions() int {
	return len(hs.Dimensions)
}

// Hypertable is a logically partitioned table.
type Hypertable struct {
	ID         int32
	RelID      RelOID
	SchemaName string
	TableName  string
	Space      *Hyperspace
}

// Slice is the half-open range [Start, End) a chunk covers along one
// dimension.
type Slice struct {
	DimensionID int32
	Start       int64
	End         int64
}

// Chunk is one physical partition of a hypertable.
type Chunk struct {
	ID           int32
	HypertableID int32
	RelID        RelOID
	Slices       []Slice
}

// SliceFor returns the chunk's slice along the given dimension.
func (c *Chunk) SliceFor(dimID int32) (Slice, bool) {
	for _, s := range c.Slices {
		if s.DimensionID == dimID {
			return s, true
		}
	}
	return Slice{}, false
}

// Catalog is the read-only metadata interface consumed during planning.
type Catalog interface {
	// HypertableByRelID looks up a hypertable by its parent relation.
	HypertableByRelID(relID RelOID) (*Hypertable, bool)

	// ChunkByID looks up a chunk by its stable id, taking the given lock
	// on its relation.
	ChunkByID(id int32, lock LockMode) (*Chunk, bool)

	// Chunks returns all chunks of a hypertable, taking the given lock
	// on each.
	Chunks(hypertableID int32, lock LockMode) []*Chunk

	// InheritanceChildren enumerates the relations of all chunks of the
	// hypertable owning parent, in catalog order.
	InheritanceChildren(parent RelOID, lock LockMode) []RelOID

	// RelationKind returns the relation kind tag.
	RelationKind(relID RelOID) RelKind

	// Attributes returns the ordered column list of a relation.
	Attributes(relID RelOID) []Attribute

	// FunctionID resolves a function by schema, name and argument types.
	FunctionID(schema, name string, argTypes []types.TypeID) (types.FuncID, bool)

	// FunctionName returns the name a function was registered under.
	FunctionName(f types.FuncID) string
}
