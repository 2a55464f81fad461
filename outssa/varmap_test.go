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

	"github.com/stretchr/testify/require"
)

func TestVarMapRegisterAndFind(t *testing.T) {
	vm := NewVarMap(nil, 5, true)
	vm.Register(1, false)
	vm.Register(2, true)
	require.Equal(t, 1, vm.RefCount(2))
	require.Equal(t, 0, vm.RefCount(1))
	require.NotEqual(t, NoPartition, vm.Find(1))
}

func TestVarMapUnionCorrectness(t *testing.T) {
	vm := NewVarMap(nil, 5, false)
	vm.Register(1, false)
	vm.Register(2, false)
	rep := vm.Union(1, 2)
	require.NotEqual(t, NoPartition, rep)
	require.Equal(t, vm.Find(1), vm.Find(2))
}

func TestVarMapCompactionPreservesMembership(t *testing.T) {
	vm := NewVarMap(nil, 6, false)
	for v := Version(1); v < 6; v++ {
		vm.Register(v, false)
	}
	vm.Union(1, 2)
	vm.Union(3, 4)

	before := map[[2]int]bool{}
	for a := 1; a < 6; a++ {
		for b := 1; b < 6; b++ {
			before[[2]int{a, b}] = vm.part.SameClass(a, b)
		}
	}

	vm.Compact(CompactDefault)

	for a := 1; a < 6; a++ {
		for b := 1; b < 6; b++ {
			require.Equal(t, before[[2]int{a, b}], vm.part.SameClass(a, b))
		}
	}
}

func TestVarMapCompactionIdempotence(t *testing.T) {
	vm := NewVarMap(nil, 6, false)
	for v := Version(1); v < 6; v++ {
		vm.Register(v, false)
	}
	vm.Union(1, 2)

	vm.Compact(CompactDefault)
	first := append([]int(nil), vm.compactToPartition...)

	vm.Compact(CompactDefault)
	second := append([]int(nil), vm.compactToPartition...)

	require.Equal(t, first, second)
}

// TestVarMapSingleDefsFilter is Scenario F: ten partitions, eight of
// which are the sole member of their RootVar group. NO_SINGLE_DEFS
// compaction should exclude those eight and keep exactly two.
func TestVarMapSingleDefsFilter(t *testing.T) {
	bb := newFakeBlock(0)
	fn := newFakeFunc(bb)
	ir := newFakeIR(fn)

	vm := NewVarMap(ir, 11, false)
	for v := Version(1); v < 11; v++ {
		vm.Register(v, false)
	}

	shared := &fakeVar{name: "shared"}
	ir.bind(9, shared)
	ir.bind(10, shared)

	for v := Version(1); v < 9; v++ {
		ir.bind(v, &fakeVar{name: "solo"})
	}

	vm.Compact(CompactNoSingleDefs)
	require.Equal(t, 2, vm.NumPartitions())
	require.True(t, vm.part.SameClass(9, 9))

	p9 := vm.VarToPartition(Version(9))
	p10 := vm.VarToPartition(Version(10))
	require.NotEqual(t, NoPartition, p9)
	require.NotEqual(t, NoPartition, p10)
	require.NotEqual(t, p9, p10)

	for v := Version(1); v < 9; v++ {
		require.Equal(t, NoPartition, vm.VarToPartition(v))
	}
}

func TestVarMapUnionPrefersBoundVariable(t *testing.T) {
	bb := newFakeBlock(0)
	fn := newFakeFunc(bb)
	ir := newFakeIR(fn)

	vm := NewVarMap(ir, 3, false)
	vm.Register(1, false)
	vm.Register(2, false)

	v := &fakeVar{name: "v"}
	vm.ChangePartitionVar(v, vm.Find(1))

	rep := vm.Union(1, 2)
	got, ok := vm.PartitionToVar(rep)
	require.True(t, ok)
	require.Equal(t, v, got)
}
