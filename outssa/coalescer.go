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

import "github.com/cloudwego/outssa/internal/debuglog"

// CoalesceStats counts what a Coalescer run did, for diagnostics and
// tests rather than for any control-flow decision.
type CoalesceStats struct {
	Attempted int
	Succeeded int
	SkippedTPA          int
	SkippedInterference int
}

// Coalescer merges partitions that don't interfere, either by draining
// a priority-ordered CoalesceList (guided mode) or by exhaustively
// trying every pair within each TPA tree (unguided/aggressive mode).
// Grounded on coalesce_tpa_members in tree-ssa-live.c, which takes the
// same two shapes depending on whether it's handed a coalesce list.
type Coalescer struct {
	vm   *VarMap
	ig   *InterferenceGraph
	tpa  *TPA
	Stats CoalesceStats
}

// NewCoalescer builds a Coalescer over a VarMap/InterferenceGraph/TPA
// triple that must already agree on partition numbering.
func NewCoalescer(vm *VarMap, ig *InterferenceGraph, tpa *TPA) *Coalescer {
	return &Coalescer{vm: vm, ig: ig, tpa: tpa}
}

// tryUnion attempts to coalesce p1 and p2: resolves both through the
// current VarMap first (prior unions elsewhere in the same list may
// already have moved either one), refuses if the resolved pair isn't
// in the same TPA tree, refuses if they interfere, otherwise unions
// their partitions in the VarMap, folds the losing partition's TPA-list
// entry out, and merges its interference-graph edges onto the survivor.
func (self *Coalescer) tryUnion(p1, p2 int) bool {
	self.Stats.Attempted++

	p1, p2 = self.vm.Find(Version(p1)), self.vm.Find(Version(p2))
	if p1 == p2 {
		return false
	}

	g1, g2 := self.tpa.Find(p1), self.tpa.Find(p2)
	if g1 == TPANone || g1 != g2 {
		self.Stats.SkippedTPA++
		debuglog.Coalesce("skipped %d/%d: not in the same TPA tree", p1, p2)
		return false
	}
	if self.ig.Interferes(p1, p2) {
		self.Stats.SkippedInterference++
		debuglog.Coalesce("skipped %d/%d: interference", p1, p2)
		return false
	}

	rep := self.vm.Union(Version(p1), Version(p2))
	if rep == NoPartition {
		debuglog.Coalesce("skipped %d/%d: union refused", p1, p2)
		return false
	}

	head := self.tpa.Find(p1)
	loser := p2
	if rep != p1 {
		loser = p1
	}
	self.tpa.RemovePartition(head, loser)
	self.ig.Merge(rep, loser)

	self.Stats.Succeeded++
	debuglog.Coalesce("coalesced partition %d into %d (tpa head %d)", loser, rep, head)
	return true
}

// RunGuided drains list in priority order, unioning whatever candidate
// pairs remain legal to union as higher-cost pairs are consumed first.
// Once the list is exhausted, guided mode stops — it never falls back
// to scanning TPA trees on its own, matching coalesce_tpa_members's
// early return when handed an explicit list.
func (self *Coalescer) RunGuided(list *CoalesceList) {
	for {
		c := list.PopBest()
		if !c.Ok {
			return
		}
		self.tryUnion(c.P1, c.P2)
	}
}

// RunUnguided walks every TPA tree and greedily attempts to coalesce
// its first member against every other member, the aggressive fallback
// coalesce_tpa_members runs when it isn't handed a coalesce list at
// all. Unlike tryUnion's guided path, the node removed from the tree's
// list on a successful union is always the one being folded in (z, the
// inner loop variable), never the enumerating representative (p1) —
// and p1 is re-resolved via VarMap.Find after every successful union,
// since a later pairing may have made it the losing side of an earlier
// one. Both points are named explicitly in coalesce_tpa_members: "var =
// partition_to_var (map, p1)" is refreshed after each var_union call,
// and only ever z is passed to tpa_remove_partition inside the inner
// loop. Every successful union also merges the losing partition's
// interference-graph edges onto the survivor, the same
// conflict_graph_merge_regs call coalesce_tpa_members makes right next
// to each tpa_remove_partition in its source.
func (self *Coalescer) RunUnguided() {
	for _, treeIndex := range append([]int(nil), self.tpa.Trees()...) {
		for self.tpa.FirstPartition(treeIndex) != TPANone {
			y := self.tpa.FirstPartition(treeIndex)
			self.tpa.RemovePartition(treeIndex, y)
			p1 := self.vm.Find(Version(y))

			for z := self.tpa.NextPartition(y); z != TPANone; z = self.tpa.NextPartition(z) {
				p2 := self.vm.Find(Version(z))
				self.Stats.Attempted++

				if p1 == p2 {
					self.tpa.RemovePartition(treeIndex, z)
					continue
				}
				if self.ig.Interferes(p1, p2) {
					self.Stats.SkippedInterference++
					continue
				}

				rep := self.vm.Union(Version(p1), Version(p2))
				if rep == NoPartition {
					continue
				}

				loser := p2
				if rep != p1 {
					loser = p1
				}
				self.tpa.RemovePartition(treeIndex, z)
				self.ig.Merge(rep, loser)
				self.Stats.Succeeded++
				debuglog.Coalesce("coalesced partition %d into %d (tree %d)", z, rep, treeIndex)
				p1 = rep
			}
		}
	}
}
