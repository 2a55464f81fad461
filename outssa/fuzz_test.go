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
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

// TestUnguidedCoalescesRandomStraightLineGroups is a randomized property
// test over the shape RunUnguided's bug lived in: an arbitrary number of
// root-variable groups, each with an arbitrary number of members whose
// live ranges never overlap (sequential def/use pairs in one block), so
// every member of a group is always legally coalescable with every other
// member of that group. Regardless of how gofakeit shuffles the group
// sizes and visiting order, the unguided pass must fold each group down
// to exactly one surviving partition — a regression net around the
// tree-index/first-partition split root_var_init and
// tpa_remove_partition require, generalized past the one hand-picked
// three-member fixture in TestCoalescerUnguidedCoalescesThreeMemberGroup.
func TestUnguidedCoalescesRandomStraightLineGroups(t *testing.T) {
	for trial := 0; trial < 25; trial++ {
		numGroups := gofakeit.Number(1, 4)
		groupOf := make([]int, 0, 32)
		for g := 0; g < numGroups; g++ {
			members := gofakeit.Number(1, 5)
			for i := 0; i < members; i++ {
				groupOf = append(groupOf, g)
			}
		}
		gofakeit.ShuffleInts(groupOf)

		bb := newFakeBlock(0)
		fn := newFakeFunc(bb)
		ir := newFakeIR(fn)

		roots := make([]*fakeVar, numGroups)
		for g := range roots {
			roots[g] = &fakeVar{name: gofakeit.Word()}
		}

		n := len(groupOf)
		vm := NewVarMap(ir, n+1, false)
		versions := make([]Version, n)
		for i, g := range groupOf {
			v := Version(i + 1)
			versions[i] = v
			vm.Register(v, false)
			ir.bind(v, roots[g])
			bb.addStmt(fakeDef(2*i, v))
			bb.addStmt(fakeUse(2*i+1, v))
		}

		result := RunOutOfSSA(ir, fn, n+1, Options{
			Compact:  true,
			Guided:   true,
			Unguided: true,
		})
		require.Empty(t, result.Errors)

		for g := 0; g < numGroups; g++ {
			var rep int
			first := true
			for i, gr := range groupOf {
				if gr != g {
					continue
				}
				p := result.VarMap.Find(versions[i])
				if first {
					rep = p
					first = false
					continue
				}
				require.Equal(t, rep, p, "trial %d: group %d failed to fully coalesce", trial, g)
			}
		}
	}
}
