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

// CheckError reports one failed self-check, in the style of the
// teacher's struct-based TypeError/SyntaxError rather than a bare
// fmt.Errorf chain.
type CheckError struct {
	Kind    string
	Detail  string
}

func (self *CheckError) Error() string {
	return self.Kind + ": " + self.Detail
}

// SelfCheck runs the debug-build-only invariant checks from the error
// handling design over a completed LiveInfo. It's a no-op unless
// DebugChecks is enabled, the same ENABLE_CHECKING gating the teacher's
// regalloc pass uses for its own panics (e.g. "regalloc: definitions
// within terminators").
//
// None of the checks treats default-defs specially: a Phi argument with
// no defining statement is held to the same live-in rule as one defined
// outside its incoming edge's source block. Partitions live on entry to
// the entry block's successors are not checked against default-defs or
// Phi arguments.
func SelfCheck(ir IR, vm *VarMap, fn Function, li *LiveInfo) []error {
	if !DebugChecks {
		return nil
	}

	var errs []error
	errs = append(errs, checkNoDefInTerminator(ir, fn)...)
	errs = append(errs, checkVirtualRealDisjoint(ir, vm, fn)...)
	errs = append(errs, checkPhiArgsLiveOnIncomingEdge(ir, vm, fn, li)...)
	return errs
}

// checkNoDefInTerminator asserts a block's terminating statement (the
// last Statement, if one exists) never defines an SSA version — control
// transfer shouldn't be conflated with a value definition, the same
// invariant the teacher's register allocator panics on.
func checkNoDefInTerminator(ir IR, fn Function) []error {
	var errs []error
	for _, bb := range fn.Blocks() {
		stmts := bb.Statements()
		if len(stmts) == 0 {
			continue
		}
		last := stmts[len(stmts)-1]
		if d, ok := last.(Definitions); ok && len(d.Definitions()) > 0 {
			errs = append(errs, &CheckError{
				Kind:   "self-check",
				Detail: "definition within block terminator",
			})
		}
	}
	return errs
}

// checkVirtualRealDisjoint asserts that no version ever appears as both
// a virtual operand and a real (partitioned) operand — the two operand
// kinds must never alias one partition space onto the other.
func checkVirtualRealDisjoint(ir IR, vm *VarMap, fn Function) []error {
	var errs []error
	for _, bb := range fn.Blocks() {
		for _, stmt := range bb.Statements() {
			real := map[Version]bool{}
			if u, ok := stmt.(Usages); ok {
				for _, v := range u.Usages() {
					real[v] = true
				}
			}
			if d, ok := stmt.(Definitions); ok {
				for _, v := range d.Definitions() {
					real[v] = true
				}
			}
			if vu, ok := stmt.(VirtualUsages); ok {
				for _, v := range vu.VirtualUsages() {
					if real[v] {
						errs = append(errs, &CheckError{
							Kind:   "self-check",
							Detail: "version used as both virtual and real operand",
						})
					}
				}
			}
			if vd, ok := stmt.(VirtualDefinitions); ok {
				for _, v := range vd.VirtualDefinitions() {
					if real[v] {
						errs = append(errs, &CheckError{
							Kind:   "self-check",
							Detail: "version defined as both virtual and real operand",
						})
					}
				}
			}
		}
	}
	return errs
}

// checkPhiArgsLiveOnIncomingEdge asserts that every Phi argument that
// has no defining statement, or whose defining block is not the source
// block of the edge it flows in on, is recorded as live-in to that
// predecessor — a direct re-check of what localScan
// is supposed to guarantee, run independently over the finished
// LiveInfo rather than trusted blindly.
func checkPhiArgsLiveOnIncomingEdge(ir IR, vm *VarMap, fn Function, li *LiveInfo) []error {
	var errs []error
	for _, bb := range fn.Blocks() {
		for _, phi := range bb.Phis() {
			for _, arg := range phi.Args() {
				if arg.Edge.Src == nil {
					continue
				}
				stmt, hasDef := ir.DefiningStatement(arg.Value)
				defBlock, _ := ir.BlockOf(stmt)
				if hasDef && defBlock == arg.Edge.Src {
					continue
				}
				p := vm.VarToPartition(arg.Value)
				if p == NoPartition {
					continue
				}
				if !li.LiveIn(p, arg.Edge.Src) {
					errs = append(errs, &CheckError{
						Kind:   "self-check",
						Detail: "phi argument not recorded live-in on its incoming edge",
					})
				}
			}
		}
	}
	return errs
}
