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

// TPAFlavor distinguishes the two groupings TPA supports: by the root
// program variable a partition was coalesced toward, or by the static
// type of that variable. GCC keeps these as separate root_var_init /
// type_var_init constructors over the same tpa_d structure; we keep the
// structure and vary it by a flavor-specific key + eligibility callback
// instead of duplicating the type.
type TPAFlavor int

const (
	RootVarFlavor TPAFlavor = iota
	TypeVarFlavor
)

// TPA (tree-partition associator) groups partitions that share a key —
// a root variable or a type — into singly-linked lists, so the
// interference-graph builder and coalescer only ever compare partitions
// that could legally be coalesced together. Grounded on tpa_d /
// tpa_init / root_var_init / type_var_init / tpa_remove_partition /
// tpa_compact in tree-ssa-live.c.
//
// A tree's identity is its index into firstPartition, not a partition
// number: tpa_remove_partition only ever rewrites first_partition[tree]
// (on head removal) or a predecessor's next_partition entry, and never
// touches partition_to_tree_map. treeIndex mirrors that — it is set once
// at construction and never changes, so Find keeps reporting a removed
// partition's original group for the rest of the TPA's life, exactly as
// tpa_find_tree does.
type TPA struct {
	flavor TPAFlavor
	vm     *VarMap
	ir     IR

	numPartitions int
	next          []int // partition -> next partition in its tree's list, or TPANone. Never cleared by RemovePartition.
	treeIndex     []int // partition -> stable tree index, or TPANone if never a TPA member. Never changes after construction.

	firstPartition []int // tree index -> current head partition of that tree's list (mutable)
	trees          []int // live tree indices, in discovery order
}

// eligible reports whether a program variable can participate in
// type-based coalescing — the exclusion list from type_var_init: no
// volatiles, no parameters or results (their storage is fixed by the
// calling convention), no hard registers, nothing the IR has already
// bound to concrete storage, and nothing the IR hasn't marked ignored
// (a user-visible decl cannot be retype-coalesced onto storage of a
// different source variable, even same-typed). This filter applies to
// TypeVarFlavor only: RootVarFlavor groups by root variable, and
// root_var_init applies no eligibility filter at all — every partition
// with a valid representative is grouped, because folding a variable's
// own reassigned SSA versions back onto its one storage slot is exactly
// what RootVar coalescing exists to do, parameters and results
// included.
func eligible(ir IR, v Variable) bool {
	if v == nil {
		return false
	}
	if ir.IsVolatile(v) {
		return false
	}
	if ir.IsParameter(v) || ir.IsResult(v) {
		return false
	}
	if ir.IsRegister(v) {
		return false
	}
	if ir.HasHardStorage(v) {
		return false
	}
	if !ir.IsIgnored(v) {
		return false
	}
	return true
}

func newTPA(flavor TPAFlavor, ir IR, vm *VarMap) *TPA {
	n := vm.NumPartitions()
	t := &TPA{
		flavor:        flavor,
		vm:            vm,
		ir:            ir,
		numPartitions: n,
		next:          make([]int, n),
		treeIndex:     make([]int, n),
	}
	for i := 0; i < n; i++ {
		t.next[i] = TPANone
		t.treeIndex[i] = TPANone
	}

	keyToTree := make(map[interface{}]int)

	for p := 0; p < n; p++ {
		key, ok := t.keyFor(p)
		if !ok {
			continue
		}
		idx, seen := keyToTree[key]
		if !seen {
			idx = len(t.firstPartition)
			keyToTree[key] = idx
			t.firstPartition = append(t.firstPartition, p)
			t.trees = append(t.trees, idx)
			t.treeIndex[p] = idx
			continue
		}
		// Append p to the tree's list: walk to the tail. Lists are short
		// in practice (one program variable's partitions), so this
		// mirrors tpa_init's simple append without needing a tail cache.
		tail := t.firstPartition[idx]
		for t.next[tail] != TPANone {
			tail = t.next[tail]
		}
		t.next[tail] = p
		t.treeIndex[p] = idx
	}

	return t
}

// NewRootVarTPA groups every partition with a valid representative by
// its RootVariable, with no eligibility filter. Grounded on
// root_var_init.
func NewRootVarTPA(ir IR, vm *VarMap) *TPA {
	return newTPA(RootVarFlavor, ir, vm)
}

// NewTypeVarTPA groups eligible partitions sharing a static type,
// independent of root variable — used when root-variable coalescing
// alone leaves partitions uncoalesced but same-typed. Grounded on
// type_var_init.
func NewTypeVarTPA(ir IR, vm *VarMap) *TPA {
	return newTPA(TypeVarFlavor, ir, vm)
}

func (self *TPA) keyFor(p int) (interface{}, bool) {
	x, ok := self.vm.PartitionToVar(p)
	if !ok {
		return nil, false
	}
	var rv Variable
	switch e := x.(type) {
	case Version:
		if self.ir == nil {
			return nil, false
		}
		rv = self.ir.RootVariable(e)
	default:
		rv = x
	}
	if rv == nil {
		return nil, false
	}
	switch self.flavor {
	case RootVarFlavor:
		// No eligibility filter: matches root_var_init.
		return rv, true
	case TypeVarFlavor:
		if self.ir == nil || !eligible(self.ir, rv) {
			return nil, false
		}
		return self.ir.TypeOf(rv), true
	}
	return nil, false
}

// Find returns the stable tree index p belongs to, or TPANone if p has
// no TPA group (either unbound, or its variable is ineligible). Unlike
// the list itself, this never changes once a partition has been
// assigned a group — not even after RemovePartition unlinks it — so
// that a partition which survives a union as the winning representative
// can still be matched against former groupmates. Grounded on
// tpa_find_tree reading partition_to_tree_map, which tpa_remove_partition
// never touches.
func (self *TPA) Find(p int) int {
	if p < 0 || p >= self.numPartitions {
		return TPANone
	}
	return self.treeIndex[p]
}

// FirstPartition returns the current head partition of the tree at
// treeIndex.
func (self *TPA) FirstPartition(treeIndex int) int {
	if treeIndex < 0 || treeIndex >= len(self.firstPartition) {
		return TPANone
	}
	return self.firstPartition[treeIndex]
}

// NextPartition returns the next member after p in its tree's list, or
// TPANone at the end. RemovePartition never clears this for the
// partition it removes, so a caller already holding p can keep walking
// from where p used to be.
func (self *TPA) NextPartition(p int) int {
	if p < 0 || p >= self.numPartitions {
		return TPANone
	}
	return self.next[p]
}

// Trees returns every live tree index, in discovery order.
func (self *TPA) Trees() []int {
	return self.trees
}

// Members returns every partition in the tree headed by head, in list
// order, head included.
func (self *TPA) Members(head int) []int {
	var out []int
	for p := head; p != TPANone; p = self.next[p] {
		out = append(out, p)
	}
	return out
}

// RemovePartition unlinks p from the list belonging to treeIndex. If p
// is the current head, the tree's first-partition entry advances to
// p's successor (or TPANone, and the tree index is then dropped from
// Trees()). Otherwise the predecessor pointing at p is rewired around
// it. p's own next pointer and tree index are left untouched — a
// removed partition remains walkable from wherever another live
// pointer still references its old position, exactly as
// tpa_remove_partition leaves next_partition[partition_index] and
// partition_to_tree_map[partition_index] alone.
func (self *TPA) RemovePartition(treeIndex, p int) int {
	if treeIndex < 0 || treeIndex >= len(self.firstPartition) {
		return TPANone
	}

	if self.firstPartition[treeIndex] == p {
		newHead := self.next[p]
		self.firstPartition[treeIndex] = newHead
		if newHead == TPANone {
			self.dropTree(treeIndex)
		}
		return newHead
	}

	prev := self.firstPartition[treeIndex]
	for prev != TPANone && self.next[prev] != p {
		prev = self.next[prev]
	}
	if prev != TPANone {
		self.next[prev] = self.next[p]
	}
	return self.firstPartition[treeIndex]
}

func (self *TPA) dropTree(treeIndex int) {
	for i, idx := range self.trees {
		if idx == treeIndex {
			self.trees = append(self.trees[:i], self.trees[i+1:]...)
			return
		}
	}
}

// Compact drops every tree that, after whatever RemovePartition calls
// have already run, has fewer than two members — such a tree offers no
// coalescing opportunity. Grounded on tpa_compact's single-element-tree
// sweep, run once after the TPA has been built and trimmed.
func (self *TPA) Compact() {
	kept := self.trees[:0:0]
	for _, idx := range self.trees {
		head := self.firstPartition[idx]
		if head == TPANone || self.next[head] == TPANone {
			continue
		}
		kept = append(kept, idx)
	}
	self.trees = kept
}
