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

// CompactFlags controls compact_var_map-equivalent behavior.
type CompactFlags int

const (
	// CompactDefault compacts every partition that is actually referenced.
	CompactDefault CompactFlags = 0
	// CompactNoSingleDefs additionally drops any partition whose RootVar
	// group has only one member — such partitions have no coalescing
	// opportunity and need not occupy a dense slot.
	CompactNoSingleDefs CompactFlags = 1 << 0
)

// entity is either an SSA Version or, once bound via ChangePartitionVar,
// a program Variable. A nil entity means "unbound".
type entity struct {
	version  Version
	variable Variable
	isVar    bool
	set      bool
}

// VarMap binds partitions to program variables and supports compaction
// into a dense index range, per spec.md §4.1.
type VarMap struct {
	ir       IR
	part     *PartitionSet
	entities []entity // indexed by uncompacted representative
	refCount []int    // nil if reference counting disabled

	partitionToCompact []int // nil when uncompacted
	compactToPartition []int // nil when uncompacted
}

// NewVarMap creates a VarMap over SSA versions [0, size) — an identity
// partitioning with nothing bound yet, the Go analogue of init_var_map.
func NewVarMap(ir IR, size int, trackRefCounts bool) *VarMap {
	vm := &VarMap{
		ir:       ir,
		part:     NewPartitionSet(size),
		entities: make([]entity, size),
	}
	if trackRefCounts {
		vm.refCount = make([]int, size)
	}
	return vm
}

// Find returns the current representative of version v's class.
func (self *VarMap) Find(v Version) int {
	return self.part.Find(int(v))
}

// Register ensures version has a partition and, if it's used as an RHS
// operand and reference counting is enabled, bumps its reference count.
// This is the Go analogue of GCC's register_ssa_partition.
func (self *VarMap) Register(v Version, usedAsRHS bool) {
	p := self.Find(v)
	if p == NoPartition {
		return
	}
	if !self.entities[p].set {
		self.entities[p] = entity{version: v, set: true}
	}
	if usedAsRHS && self.refCount != nil {
		self.refCount[int(v)]++
	}
}

// Union merges the partitions of v1 and v2 and returns the new
// representative, or NoPartition if either input is invalid or the
// union is otherwise refused. A union of two versions already unified
// is a no-op returning the existing representative.
//
// When both sides carry a bound entity, the program-variable binding
// wins over a bare SSA version, and between two program-variable
// bindings the one VarInfo doesn't report as IsIgnored wins — the same
// root-var-over-other-var preference GCC's var_union applies so a
// user-visible variable's identity survives coalescing with a
// compiler-generated temporary.
func (self *VarMap) Union(v1, v2 Version) int {
	p1, p2 := self.Find(v1), self.Find(v2)
	if p1 == NoPartition || p2 == NoPartition {
		return NoPartition
	}
	if p1 == p2 {
		return p1
	}
	e1, e2 := self.entities[p1], self.entities[p2]
	rep := self.part.Union(int(v1), int(v2))
	other := p1
	if rep == p2 {
		other = p1
	} else {
		other = p2
	}
	self.entities[rep] = self.preferredEntity(e1, e2)
	self.entities[other] = entity{}
	return rep
}

func (self *VarMap) preferredEntity(a, b entity) entity {
	if !a.set {
		return b
	}
	if !b.set {
		return a
	}
	if a.isVar && !b.isVar {
		return a
	}
	if b.isVar && !a.isVar {
		return b
	}
	if a.isVar && b.isVar && self.ir != nil {
		if self.ir.IsIgnored(b.variable) && !self.ir.IsIgnored(a.variable) {
			return a
		}
		if self.ir.IsIgnored(a.variable) && !self.ir.IsIgnored(b.variable) {
			return b
		}
	}
	return a
}

// VarToPartition accepts either an SSA version or a program variable and
// returns its partition index: the post-compaction compact index if
// compaction has run, otherwise the uncompacted representative. Returns
// NoPartition if x is not mapped.
func (self *VarMap) VarToPartition(x interface{}) int {
	var rep int
	switch v := x.(type) {
	case Version:
		rep = self.Find(v)
	case Variable:
		rep = NoPartition
		for p, e := range self.entities {
			if e.set && e.isVar && e.variable == v {
				rep = p
				break
			}
		}
	default:
		return NoPartition
	}
	if rep == NoPartition {
		return NoPartition
	}
	if self.partitionToCompact != nil {
		c := self.partitionToCompact[rep]
		if c == NoPartition {
			return NoPartition
		}
		return c
	}
	return rep
}

// PartitionToVar returns the entity bound to a partition index (which,
// after compaction, is a compact index). Returns nil, false if unbound.
func (self *VarMap) PartitionToVar(p int) (interface{}, bool) {
	rep := p
	if self.compactToPartition != nil {
		if p < 0 || p >= len(self.compactToPartition) {
			return nil, false
		}
		rep = self.compactToPartition[p]
	}
	e := self.entities[rep]
	if !e.set {
		return nil, false
	}
	if e.isVar {
		return e.variable, true
	}
	return e.version, true
}

// ChangePartitionVar binds the representative entity of compact
// partition part to a program variable — used after compaction to
// attach real variable identity to a partition, per spec.md §4.1.
func (self *VarMap) ChangePartitionVar(v Variable, part int) {
	rep := part
	if self.compactToPartition != nil {
		rep = self.compactToPartition[part]
	}
	self.entities[rep] = entity{variable: v, isVar: true, set: true}
}

// NumPartitions returns the number of dense partitions after
// compaction, or the uncompacted universe size if compaction hasn't
// run.
func (self *VarMap) NumPartitions() int {
	if self.compactToPartition != nil {
		return len(self.compactToPartition)
	}
	return self.part.Size()
}

// Compact renumbers partitions into [0, NumPartitions()), preserving
// membership. Re-running compaction is permitted and idempotent in
// membership; prior compaction arrays are discarded first. If nothing
// was eliminated, the compaction mappings are left nil (matching the
// spec's "leave compaction mappings empty (null)").
//
// With CompactNoSingleDefs, Compact builds a throwaway RootVar grouping
// over the current (uncompacted) map to find which partitions are the
// sole member of their root variable's group, the same way GCC's
// compact_var_map calls root_var_init internally rather than taking a
// TPA from the caller.
func (self *VarMap) Compact(flags CompactFlags) {
	self.partitionToCompact = nil
	self.compactToPartition = nil

	size := self.part.Size()
	seen := make([]bool, size)
	referenced := make([]bool, size)

	for x := 1; x < size; x++ {
		rep := self.part.Find(x)
		if !seen[rep] && self.entities[rep].set {
			seen[rep] = true
			referenced[rep] = true
		}
	}

	var groupSize map[interface{}]int
	var groupOf func(rep int) interface{}
	if flags&CompactNoSingleDefs != 0 {
		groupOf = func(rep int) interface{} {
			e := self.entities[rep]
			if !e.set {
				return nil
			}
			if e.isVar {
				return e.variable
			}
			if self.ir != nil {
				return self.ir.RootVariable(e.version)
			}
			return e.version
		}
		groupSize = make(map[interface{}]int)
		for rep := range referenced {
			if referenced[rep] {
				if key := groupOf(rep); key != nil {
					groupSize[key]++
				}
			}
		}
	}

	included := make([]bool, size)
	count := 0
	for rep := range referenced {
		if !referenced[rep] {
			continue
		}
		if groupSize != nil {
			if key := groupOf(rep); key != nil && groupSize[key] <= 1 {
				continue
			}
		}
		included[rep] = true
		count++
	}

	if count == size-1 {
		return
	}

	ptc := make([]int, size)
	for i := range ptc {
		ptc[i] = NoPartition
	}
	ctp := make([]int, count)

	idx := 0
	for rep := range included {
		if !included[rep] {
			continue
		}
		ptc[rep] = idx
		ctp[idx] = rep
		idx++
	}

	self.partitionToCompact = ptc
	self.compactToPartition = ctp
}

// RefCount returns the recorded reference count for version v, or 0 if
// reference counting was disabled.
func (self *VarMap) RefCount(v Version) int {
	if self.refCount == nil {
		return 0
	}
	return self.refCount[int(v)]
}
