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

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// InterferenceGraph records which partitions are simultaneously live and
// therefore cannot be coalesced. Backed by gonum's undirected simple
// graph rather than a hand-rolled adjacency set — this is the one place
// in the package where reaching for a graph library instead of a bitset
// earns its keep, since gonum also gives us Nodes()/From() iteration
// for free when dumping the graph for debugging.
type InterferenceGraph struct {
	g *simple.UndirectedGraph
}

func newInterferenceGraph() *InterferenceGraph {
	return &InterferenceGraph{g: simple.NewUndirectedGraph()}
}

func (self *InterferenceGraph) ensureNode(p int) {
	id := int64(p)
	if self.g.Node(id) == nil {
		self.g.AddNode(simple.Node(id))
	}
}

// AddConflict records that partitions p1 and p2 interfere. A
// self-conflict (p1 == p2) is ignored.
func (self *InterferenceGraph) AddConflict(p1, p2 int) {
	if p1 == p2 || p1 == NoPartition || p2 == NoPartition {
		return
	}
	self.ensureNode(p1)
	self.ensureNode(p2)
	if !self.g.HasEdgeBetween(int64(p1), int64(p2)) {
		self.g.SetEdge(self.g.NewEdge(simple.Node(p1), simple.Node(p2)))
	}
}

// Interferes reports whether p1 and p2 have a recorded conflict.
func (self *InterferenceGraph) Interferes(p1, p2 int) bool {
	return self.g.HasEdgeBetween(int64(p1), int64(p2))
}

// Merge re-points every edge incident to removed onto kept, then drops
// removed from the graph — the Go analogue of
// conflict_graph_merge_regs, which coalesce_tpa_members calls
// immediately after every successful var_union so the absorbed
// partition's conflicts survive under the surviving partition's id.
// Without this, a partition folded into kept by one union silently
// loses its recorded interferences, and a later candidate can coalesce
// into kept as though it never conflicted with what removed used to.
func (self *InterferenceGraph) Merge(kept, removed int) {
	if kept == removed || kept == NoPartition || removed == NoPartition {
		return
	}
	n := self.g.Node(int64(removed))
	if n == nil {
		return
	}
	self.ensureNode(kept)
	for _, m := range graph.NodesOf(self.g.From(n.ID())) {
		self.AddConflict(kept, int(m.ID()))
	}
	self.g.RemoveNode(int64(removed))
}

// Neighbors returns every partition recorded as conflicting with p.
func (self *InterferenceGraph) Neighbors(p int) []int {
	n := self.g.Node(int64(p))
	if n == nil {
		return nil
	}
	var out []int
	nodes := graph.NodesOf(self.g.From(n.ID()))
	for _, m := range nodes {
		out = append(out, int(m.ID()))
	}
	return out
}

// groupScratch is the reusable "which partitions of this TPA group are
// currently live" list the builder keeps one of per group, cleared and
// refilled block by block instead of being reallocated — the Go
// analogue of the scratch conflict list build_tree_conflict_graph reuses
// across blocks in tree-ssa-live.c.
type groupScratch struct {
	live map[int][]int // tpa group head -> live partitions in that group
}

func newGroupScratch() *groupScratch {
	return &groupScratch{live: make(map[int][]int)}
}

func (self *groupScratch) add(group, p int) {
	self.live[group] = append(self.live[group], p)
}

func (self *groupScratch) remove(group, p int) {
	list := self.live[group]
	for i, q := range list {
		if q == p {
			self.live[group] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (self *groupScratch) members(group int) []int {
	return self.live[group]
}

func (self *groupScratch) reset() {
	for k := range self.live {
		delete(self.live, k)
	}
}

// BuildInterferenceGraph walks fn backward block by block, starting each
// block's live set from li.LiveOut, and records a conflict between a
// defined partition and every other live partition in the same TPA
// group. Copy statements are treated as non-interfering between their
// two partitions: the RHS's liveness bit is cleared before the LHS's
// conflicts are computed and restored immediately after, so a
// register-to-register copy doesn't itself prevent the coalesce it
// exists to enable. An unused Phi result still conflicts with whatever
// is live at the top of the block, since its storage is occupied
// whether or not anything later reads it. Grounded on
// build_tree_conflict_graph / add_conflicts_if_valid in tree-ssa-live.c.
func BuildInterferenceGraph(ir IR, vm *VarMap, fn Function, li *LiveInfo, tpa *TPA) *InterferenceGraph {
	ig := newInterferenceGraph()
	scratch := newGroupScratch()

	for _, bb := range fn.Blocks() {
		scratch.reset()

		out := li.LiveOut(bb)
		out.Range(func(p int) {
			g := tpa.Find(p)
			if g != TPANone {
				scratch.add(g, p)
			}
		})

		stmts := bb.Statements()
		for i := len(stmts) - 1; i >= 0; i-- {
			stmt := stmts[i]

			var copyRHS int = NoPartition
			var copyGroup int = TPANone
			if lhs, rhs, ok := ir.IsCopy(stmt); ok {
				copyRHS = vm.VarToPartition(rhs)
				copyGroup = tpa.Find(copyRHS)
				_ = lhs
				if copyGroup != TPANone {
					scratch.remove(copyGroup, copyRHS)
				}
			}

			if d, ok := stmt.(Definitions); ok {
				for _, v := range d.Definitions() {
					p := vm.VarToPartition(v)
					if p == NoPartition {
						continue
					}
					g := tpa.Find(p)
					if g != TPANone {
						for _, q := range scratch.members(g) {
							ig.AddConflict(p, q)
						}
						scratch.remove(g, p)
					}
				}
			}

			if copyRHS != NoPartition && copyGroup != TPANone {
				scratch.add(copyGroup, copyRHS)
			}

			if u, ok := stmt.(Usages); ok {
				for _, v := range u.Usages() {
					p := vm.VarToPartition(v)
					if p == NoPartition {
						continue
					}
					g := tpa.Find(p)
					if g != TPANone {
						scratch.add(g, p)
					}
				}
			}
		}

		// Phi results are defined at the top of the block; conflict
		// against whatever remains live regardless of whether the
		// result itself is ever used downstream.
		for _, phi := range bb.Phis() {
			p := vm.VarToPartition(phi.Result())
			if p == NoPartition {
				continue
			}
			g := tpa.Find(p)
			if g == TPANone {
				continue
			}
			for _, q := range scratch.members(g) {
				ig.AddConflict(p, q)
			}
			scratch.remove(g, p)
		}
	}

	return ig
}
