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

func TestRunOutOfSSACoalescesCopyChain(t *testing.T) {
	bb := newFakeBlock(0)

	const (
		a1 Version = 1
		a2 Version = 2
	)

	bb.addStmt(fakeDef(0, a1))
	bb.addStmt(fakeCopy(1, a2, a1))
	bb.addStmt(fakeUse(2, a2))

	fn := newFakeFunc(bb)
	ir := newFakeIR(fn)
	setupSingleVar(ir, a1, a2)

	result := RunOutOfSSA(ir, fn, 3, Options{
		Compact:  true,
		Guided:   true,
		Unguided: true,
	})

	require.Equal(t, 1, result.VarMap.NumPartitions())
	require.Equal(t, 1, result.Coalescer.Succeeded)
	require.Empty(t, result.Errors)
}

func TestRunOutOfSSALeavesInterferingPairsSeparate(t *testing.T) {
	b1 := newFakeBlock(0)
	b2 := newFakeBlock(1)
	join := newFakeBlock(2)
	fakeLink(b1, join)
	fakeLink(b2, join)

	const (
		a1 Version = 1
		a2 Version = 2
		a3 Version = 3
	)

	b1.addStmt(fakeDef(0, a1))
	b2.addStmt(fakeDef(1, a2))

	phi := newFakePhi(a3)
	phi.addArg(a1, b1)
	phi.addArg(a2, b2)
	join.addPhi(phi)
	join.addStmt(fakeUse(2, a1))
	join.addStmt(fakeUse(3, a3))

	fn := newFakeFunc(b1, b2, join)
	ir := newFakeIR(fn)
	setupSingleVar(ir, a1, a2, a3)

	result := RunOutOfSSA(ir, fn, 4, Options{
		Compact:  true,
		Unguided: true,
	})

	require.Equal(t, 0, result.Coalescer.Succeeded)
}

func TestSelfCheckOffByDefault(t *testing.T) {
	require.False(t, DebugChecks)

	bb := newFakeBlock(0)
	bb.addStmt(fakeDef(0, Version(1)))
	fn := newFakeFunc(bb)
	ir := newFakeIR(fn)
	vm := NewVarMap(ir, 2, false)
	vm.Register(1, false)
	li := NewLiveInfo(ir, vm, fn)

	require.Nil(t, SelfCheck(ir, vm, fn, li))
}

func TestSelfCheckCatchesVirtualRealAlias(t *testing.T) {
	DebugChecks = true
	defer func() { DebugChecks = false }()

	bb := newFakeBlock(0)
	stmt := fakeDef(0, Version(1))
	stmt.vuses = []Version{Version(1)}
	bb.addStmt(stmt)
	fn := newFakeFunc(bb)
	ir := newFakeIR(fn)
	vm := NewVarMap(ir, 2, false)
	vm.Register(1, false)
	li := NewLiveInfo(ir, vm, fn)

	errs := SelfCheck(ir, vm, fn, li)
	require.NotEmpty(t, errs)
}
