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

import "github.com/oleiade/lane"

// coalescePair is one accumulated (p1, p2) candidate with its running
// cost, keyed the way create_coalesce_list buckets by the smaller
// partition number.
type coalescePair struct {
	p1, p2 int
	cost   int
}

// CoalesceList accumulates coalesce candidates while in add mode, then
// is sorted once into pop mode — the two modes are distinct and
// mixing them is a caller error, matching create_coalesce_list /
// add_coalesce / sort_coalesce_list / pop_best_coalesce in
// tree-ssa-live.c.
type CoalesceList struct {
	buckets map[int][]coalescePair // p1 -> candidates, add mode only
	pq      *lane.PQueue           // pop mode only, nil until Sort
	popMode bool
}

// NewCoalesceList returns an empty list ready to accumulate candidates.
func NewCoalesceList() *CoalesceList {
	return &CoalesceList{buckets: make(map[int][]coalescePair)}
}

// Add records a coalesce candidate between p1 and p2, adding cost to
// any existing candidate for the same unordered pair rather than
// duplicating it. Add panics if called after Sort — add mode and pop
// mode are mutually exclusive for the lifetime of a list.
func (self *CoalesceList) Add(p1, p2, cost int) {
	if self.popMode {
		panic("outssa: Add called on a CoalesceList already in pop mode")
	}
	if p1 == p2 || p1 == NoPartition || p2 == NoPartition {
		return
	}
	lo, hi := p1, p2
	if lo > hi {
		lo, hi = hi, lo
	}
	bucket := self.buckets[lo]
	for i := range bucket {
		if bucket[i].p2 == hi {
			bucket[i].cost += cost
			return
		}
	}
	self.buckets[lo] = append(bucket, coalescePair{p1: lo, p2: hi, cost: cost})
}

// Sort flattens the accumulated buckets into a descending-by-cost
// priority queue and switches the list into pop mode. Sort is
// idempotent only in the sense that calling it twice simply rebuilds
// the queue from the same (now-frozen) buckets.
func (self *CoalesceList) Sort() {
	self.pq = lane.NewPQueue(lane.MAXPQ)
	for _, bucket := range self.buckets {
		for _, pair := range bucket {
			self.pq.Push(pair, pair.cost)
		}
	}
	self.popMode = true
}

// PopBest removes and returns the highest-cost remaining candidate.
// PopBest panics if the list hasn't been Sorted yet — pop_best_coalesce
// requires a sorted list as a precondition in tree-ssa-live.c and we
// keep the same contract rather than silently sorting on first pop.
func (self *CoalesceList) PopBest() CoalesceCandidate {
	if !self.popMode {
		panic("outssa: PopBest called before Sort")
	}
	v, _ := self.pq.Pop()
	if v == nil {
		return NoBestCoalesce
	}
	pair := v.(coalescePair)
	return CoalesceCandidate{P1: pair.p1, P2: pair.p2, Cost: pair.cost, Ok: true}
}

// Empty reports whether the sorted queue has been exhausted.
func (self *CoalesceList) Empty() bool {
	if !self.popMode {
		return len(self.buckets) == 0
	}
	return self.pq.Empty()
}
