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

package catalog

import (
	"slices"

	"github.com/tong0711/timescaledb/go/ts/types"
)

// ChunksInFuncName is the name of the explicit chunk-selection marker
// function.
const ChunksInFuncName = "chunks_in"

// ChunksInFuncID is the stable identity MemCatalog assigns to chunks_in.
// Keeping it fixed makes the process-wide cache of the marker's identity
// valid across catalog instances.
const ChunksInFuncID types.FuncID = 1

type memFunction struct {
	id       types.FuncID
	schema   string
	name     string
	argTypes []types.TypeID
}

// MemCatalog is an in-memory Catalog used by tests and tooling.
type MemCatalog struct {
	hypertables map[RelOID]*Hypertable
	chunks      map[int32]*Chunk
	attributes  map[RelOID][]Attribute
	functions   []memFunction
	nextFuncID  types.FuncID
}

var _ Catalog = (*MemCatalog)(nil)

// NewMemCatalog returns an empty catalog with the extension's internal
// functions pre-registered.
func NewMemCatalog() *MemCatalog {
	c := &MemCatalog{
		hypertables: make(map[RelOID]*Hypertable),
		chunks:      make(map[int32]*Chunk),
		attributes:  make(map[RelOID][]Attribute),
		nextFuncID:  ChunksInFuncID,
	}
	c.RegisterFunction(InternalSchema, ChunksInFuncName, []types.TypeID{types.TypeRecord, types.TypeInt4Array})
	return c
}

// AddHypertable registers a hypertable and its column layout.
func (c *MemCatalog) AddHypertable(ht *Hypertable, attrs []Attribute) {
	c.hypertables[ht.RelID] = ht
	c.attributes[ht.RelID] = attrs
}

// AddChunk registers a chunk. Chunks share the parent's column layout by
// construction, so the parent's attributes are reused.
func (c *MemCatalog) AddChunk(ch *Chunk) {
	c.chunks[ch.ID] = ch
	for _, ht := range c.hypertables {
		if ht.ID == ch.HypertableID {
			c.attributes[ch.RelID] = c.attributes[ht.RelID]
		}
	}
}

// RegisterFunction assigns an identity to a function signature.
func (c *MemCatalog) RegisterFunction(schema, name string, argTypes []types.TypeID) types.FuncID {
	id := c.nextFuncID
	c.nextFuncID++
	c.functions = append(c.functions, memFunction{id: id, schema: schema, name: name, argTypes: argTypes})
	return id
}

func (c *MemCatalog) HypertableByRelID(relID RelOID) (*Hypertable, bool) {
	ht, ok := c.hypertables[relID]
	return ht, ok
}

func (c *MemCatalog) ChunkByID(id int32, _ LockMode) (*Chunk, bool) {
	ch, ok := c.chunks[id]
	return ch, ok
}

func (c *MemCatalog) Chunks(hypertableID int32, _ LockMode) []*Chunk {
	var out []*Chunk
	for _, ch := range c.chunks {
		if ch.HypertableID == hypertableID {
			out = append(out, ch)
		}
	}
	slices.SortFunc(out, func(a, b *Chunk) int { return int(a.ID) - int(b.ID) })
	return out
}

func (c *MemCatalog) InheritanceChildren(parent RelOID, lock LockMode) []RelOID {
	ht, ok := c.hypertables[parent]
	if !ok {
		return nil
	}
	var out []RelOID
	for _, ch := range c.Chunks(ht.ID, lock) {
		out = append(out, ch.RelID)
	}
	return out
}

func (c *MemCatalog) RelationKind(RelOID) RelKind {
	return RelKindTable
}

func (c *MemCatalog) Attributes(relID RelOID) []Attribute {
	return c.attributes[relID]
}

func (c *MemCatalog) FunctionID(schema, name string, argTypes []types.TypeID) (types.FuncID, bool) {
	for _, f := range c.functions {
		if f.schema == schema && f.name == name && slices.Equal(f.argTypes, argTypes) {
			return f.id, true
		}
	}
	return types.FuncInvalid, false
}

func (c *MemCatalog) FunctionName(id types.FuncID) string {
	for _, f := range c.functions {
		if f.id == id {
			return f.name
		}
	}
	return ""
}
