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
	"github.com/oleiade/lane"

	"github.com/cloudwego/outssa/internal/bitset"
	"github.com/cloudwego/outssa/internal/debuglog"
)

// LiveInfo holds per-block live-on-entry bitmaps (one bitset per
// partition, indexed by block id) and the deferred live-on-exit
// bitmaps, computed against a stable VarMap. This is the Go analogue of
// GCC's tree_live_info_d / calculate_live_on_entry.
type LiveInfo struct {
	ir  IR
	vm  *VarMap
	fn  Function
	nbb int

	livein  []*bitset.Set // indexed by partition
	liveout []*bitset.Set // indexed by block id, nil until computed
	global  *bitset.Set   // one bit per partition
}

// NewLiveInfo allocates a LiveInfo for fn over vm and immediately runs
// the local-scan + worklist passes (spec.md §4.2).
func NewLiveInfo(ir IR, vm *VarMap, fn Function) *LiveInfo {
	nbb := fn.NumBlocks()
	np := vm.NumPartitions()

	li := &LiveInfo{
		ir:     ir,
		vm:     vm,
		fn:     fn,
		nbb:    nbb,
		livein: make([]*bitset.Set, np),
		global: bitset.New(np),
	}
	for i := range li.livein {
		li.livein[i] = bitset.New(nbb)
	}

	li.localScan()
	li.worklist()
	return li
}

// setIfValid sets bit p in vec if var maps to a valid partition.
func (self *LiveInfo) setIfValid(vec *bitset.Set, v Version) {
	p := self.vm.VarToPartition(v)
	if p != NoPartition {
		vec.Set(p)
	}
}

// addLiveinIfNotdef marks v's partition live-in to bb (and global) if
// it isn't already recorded as defined in this block's saw_def set.
func (self *LiveInfo) addLiveinIfNotdef(sawDef *bitset.Set, v Version, bb Block) {
	p := self.vm.VarToPartition(v)
	if p == NoPartition || bb == nil {
		return
	}
	if !sawDef.Test(p) {
		self.livein[p].Set(bb.ID())
		self.global.Set(p)
	}
}

// localScan is the first pass of spec.md §4.2: per block, top-down scan
// of Phi arguments (against predecessor edges), then Phi results, then
// ordinary statement USE/DEF operands.
func (self *LiveInfo) localScan() {
	for _, bb := range self.fn.Blocks() {
		sawDef := bitset.New(self.vm.NumPartitions())

		// Pass 1: Phi arguments flowing in on an edge from a block that
		// doesn't define them are live-in to that predecessor block.
		for _, phi := range bb.Phis() {
			for _, arg := range phi.Args() {
				stmt, hasDef := self.ir.DefiningStatement(arg.Value)
				defBlock, _ := self.ir.BlockOf(stmt)
				if !hasDef || defBlock != arg.Edge.Src {
					self.addLiveinIfNotdef(sawDef, arg.Value, arg.Edge.Src)
				}
			}
		}

		// Pass 2: only now mark the Phi results as defined. A later Phi
		// in the same block may reference an earlier Phi's result as an
		// argument flowing from a predecessor edge, not as a same-block
		// value — marking results between passes would incorrectly
		// suppress that liveness (spec.md §4.2 ordering rationale).
		for _, phi := range bb.Phis() {
			self.setIfValid(sawDef, phi.Result())
		}

		for _, stmt := range bb.Statements() {
			if u, ok := stmt.(Usages); ok {
				for _, v := range u.Usages() {
					self.addLiveinIfNotdef(sawDef, v, bb)
				}
			}
			if d, ok := stmt.(Definitions); ok {
				for _, v := range d.Definitions() {
					self.setIfValid(sawDef, v)
				}
			}
		}
	}
}

// worklist is the second pass: propagate livein bits backward across
// predecessor edges until no more change is possible. Pop order doesn't
// affect the result — it's a monotone fixpoint over a finite lattice —
// but lane.Stack gives the same DFS-order worklist the teacher uses for
// every CFG traversal (blockiter.go, rename.go, phi.go).
func (self *LiveInfo) worklist() {
	self.global.Range(func(p int) {
		stack := lane.NewStack()
		self.livein[p].Range(func(b int) {
			stack.Push(b)
		})
		for !stack.Empty() {
			b := stack.Pop().(int)
			bb := self.blockByID(b)
			if bb == nil {
				continue
			}
			defBlock := self.defBlockOfPartition(p)
			for _, e := range bb.Preds() {
				if e.Src == nil {
					continue
				}
				if e.Src == defBlock {
					continue
				}
				if !self.livein[p].Test(e.Src.ID()) {
					self.livein[p].Set(e.Src.ID())
					stack.Push(e.Src.ID())
				}
			}
		}
	})
}

func (self *LiveInfo) blockByID(id int) Block {
	for _, bb := range self.fn.Blocks() {
		if bb.ID() == id {
			return bb
		}
	}
	return nil
}

// defBlockOfPartition resolves the block that defines the representative
// version bound to partition p, or nil if none (default-def).
func (self *LiveInfo) defBlockOfPartition(p int) Block {
	x, ok := self.vm.PartitionToVar(p)
	if !ok {
		return nil
	}
	v, ok := x.(Version)
	if !ok {
		return nil
	}
	stmt, ok := self.ir.DefiningStatement(v)
	if !ok {
		return nil
	}
	bb, ok := self.ir.BlockOf(stmt)
	if !ok {
		return nil
	}
	return bb
}

// LiveIn reports whether partition p is live on entry to block bb.
func (self *LiveInfo) LiveIn(p int, bb Block) bool {
	if p == NoPartition || p >= len(self.livein) {
		return false
	}
	return self.livein[p].Test(bb.ID())
}

// LiveInBlocks returns the bitset of blocks partition p is live-in to.
func (self *LiveInfo) LiveInBlocks(p int) *bitset.Set {
	return self.livein[p]
}

// Global reports whether partition p is live-in to at least one block.
func (self *LiveInfo) Global(p int) bool {
	return self.global.Test(p)
}

// LiveOut computes (on first call) and returns the set of partitions
// live on exit from every block, per spec.md §4.2's deferred live-out
// pass: a partition is live-out of b if b is a predecessor of some
// block where it's live-in, and every Phi argument flowing in on an
// edge from b makes its value live-out of b.
func (self *LiveInfo) LiveOut(bb Block) *bitset.Set {
	if self.liveout == nil {
		self.computeLiveOut()
	}
	return self.liveout[bb.ID()]
}

func (self *LiveInfo) computeLiveOut() {
	np := self.vm.NumPartitions()
	onExit := make([]*bitset.Set, self.nbb)
	for i := range onExit {
		onExit[i] = bitset.New(np)
	}

	for _, bb := range self.fn.Blocks() {
		for _, phi := range bb.Phis() {
			for _, arg := range phi.Args() {
				if arg.Edge.Src == nil {
					continue
				}
				self.setIfValid(onExit[arg.Edge.Src.ID()], arg.Value)
			}
		}
	}

	for p := 0; p < np; p++ {
		self.livein[p].Range(func(b int) {
			bb := self.blockByID(b)
			if bb == nil {
				return
			}
			for _, e := range bb.Preds() {
				if e.Src != nil {
					onExit[e.Src.ID()].Set(p)
				}
			}
		})
	}

	self.liveout = onExit
	debuglog.Liveness("computed live-out for %d blocks", self.nbb)
}
