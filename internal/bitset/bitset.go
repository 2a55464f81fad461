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

// Package bitset is a flat word-vector bitmap, the externalized
// bitmap/sparse-set primitive that the out-of-SSA core is specified
// against (create, clear, set-bit, test-bit, iterate-set-bits, copy,
// intersect, free). It plays the same role here that the teacher's
// hand-rolled _RegSet/SlotSet map-of-struct{} sets play in
// pass_regalloc.go and slotset.go, upgraded to a word vector because
// the domains indexed here (basic blocks, partitions) are dense small
// integers.
package bitset

import "math/bits"

const wordBits = 64

// Set is a fixed-universe bitmap over [0, n).
type Set struct {
	words []uint64
	n     int
}

// New creates a Set with universe size n, all bits clear.
func New(n int) *Set {
	return &Set{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the universe size this set was created with.
func (s *Set) Len() int {
	return s.n
}

// Clear resets every bit to zero without reallocating.
func (s *Set) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Set sets bit i.
func (s *Set) Set(i int) {
	s.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Unset clears bit i.
func (s *Set) Unset(i int) {
	s.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	return s.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	c := &Set{words: make([]uint64, len(s.words)), n: s.n}
	copy(c.words, s.words)
	return c
}

// CopyFrom overwrites s's bits with other's, in place (no allocation).
func (s *Set) CopyFrom(other *Set) {
	copy(s.words, other.words)
}

// And intersects s with other in place.
func (s *Set) And(other *Set) {
	for i := range s.words {
		s.words[i] &= other.words[i]
	}
}

// Union merges other into s in place.
func (s *Set) Union(other *Set) {
	for i := range s.words {
		s.words[i] |= other.words[i]
	}
}

// Empty reports whether no bit is set.
func (s *Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	c := 0
	for _, w := range s.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// Range calls f once for every set bit, in ascending order.
func (s *Set) Range(f func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			f(wi*wordBits + b)
			w &= w - 1
		}
	}
}
