/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package outssa

// PartitionSet is a union-find structure over SSA versions [0, size).
// Everything above it (VarMap, TPA, the coalescer) only ever references
// versions through their current representative, never by raw index,
// which is what makes compaction and coalescing cheap: identity lives
// here, numbering lives in VarMap.
type PartitionSet struct {
	parent []int
	rank   []int
	size   int
}

// NewPartitionSet creates an identity partitioning on [0, size).
func NewPartitionSet(size int) *PartitionSet {
	p := &PartitionSet{
		parent: make([]int, size),
		rank:   make([]int, size),
		size:   size,
	}
	for i := range p.parent {
		p.parent[i] = i
	}
	return p
}

// Size returns the universe size this set was created with.
func (self *PartitionSet) Size() int {
	return self.size
}

// Find returns the representative of the class containing v, with path
// compression.
func (self *PartitionSet) Find(v int) int {
	if v < 0 || v >= self.size {
		return NoPartition
	}
	root := v
	for self.parent[root] != root {
		root = self.parent[root]
	}
	for self.parent[v] != root {
		next := self.parent[v]
		self.parent[v] = root
		v = next
	}
	return root
}

// Union merges the classes containing v1 and v2 and returns the new
// representative, or NoPartition if either input is invalid. A union of
// two versions already in the same class is a no-op that returns the
// existing representative.
func (self *PartitionSet) Union(v1, v2 int) int {
	r1, r2 := self.Find(v1), self.Find(v2)
	if r1 == NoPartition || r2 == NoPartition {
		return NoPartition
	}
	if r1 == r2 {
		return r1
	}
	if self.rank[r1] < self.rank[r2] {
		r1, r2 = r2, r1
	}
	self.parent[r2] = r1
	if self.rank[r1] == self.rank[r2] {
		self.rank[r1]++
	}
	return r1
}

// SameClass reports whether a and b are currently in the same partition.
func (self *PartitionSet) SameClass(a, b int) bool {
	return self.Find(a) == self.Find(b)
}
