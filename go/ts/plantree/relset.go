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

import "math/bits"

// RelSet is a set of range-table indices, encoded as a bitset. The zero
// value is the empty set.
type RelSet []uint64

// With returns a new RelSet that also contains rel.
func (rs RelSet) With(rel RelIndex) RelSet {
	word := int(rel) / 64
	out := make(RelSet, max(len(rs), word+1))
	copy(out, rs)
	out[word] |= 1 << (uint(rel) % 64)
	return out
}

// IsMember reports whether rel is in the set.
func (rs RelSet) IsMember(rel RelIndex) bool {
	word := int(rel) / 64
	return word < len(rs) && rs[word]&(1<<(uint(rel)%64)) != 0
}

// NumRels returns the number of relations in the set.
func (rs RelSet) NumRels() (n int) {
	for _, w := range rs {
		n += bits.OnesCount64(w)
	}
	return n
}

// SingleRel returns the only member of the set, if the set has exactly
// one member.
func (rs RelSet) SingleRel() (RelIndex, bool) {
	if rs.NumRels() != 1 {
		return 0, false
	}
	for i, w := range rs {
		if w != 0 {
			return RelIndex(i*64 + bits.TrailingZeros64(w)), true
		}
	}
	return 0, false
}

// IsEmpty reports whether the set has no members.
func (rs RelSet) IsEmpty() bool {
	return rs.NumRels() == 0
}
